package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"piazza/dto"
	"piazza/internal/middleware"
	"piazza/internal/services"
)

// CreatePostHandler godoc
// @Summary      Create a post
// @Description  topic may be a single string or an array; expirationMinutes must be positive
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreatePostDTO  true  "post"
// @Success      201   {object}  dto.PostResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/posts [post]
func CreatePostHandler(svc *services.PostService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}
		var body dto.CreatePostDTO
		if err := parseBody(c, &body); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		p, err := svc.Create(ctx, owner, services.CreatePostInput{
			Title:             body.Title,
			Message:           body.Message,
			Topics:            body.Topic,
			ExpirationMinutes: float64(body.ExpirationMinutes),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(dto.NewPostResponse(p, svc.Now()))
	}
}

// ListByTopicHandler godoc
// @Summary      List posts in a topic
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        topic   path      string  true   "Politics, Health, Sport or Tech"
// @Param        status  query     string  false  "Live or Expired"
// @Success      200     {array}   dto.PostResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      401     {object}  dto.ErrorResponse
// @Router       /api/posts/topic/{topic} [get]
func ListByTopicHandler(svc *services.PostService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		posts, err := svc.ListByTopic(ctx, c.Params("topic"), c.Query("status"))
		if err != nil {
			return err
		}
		return c.JSON(dto.NewPostResponses(posts, svc.Now()))
	}
}

// ListExpiredHandler godoc
// @Summary      List expired posts in a topic
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        topic  path      string  true  "Politics, Health, Sport or Tech"
// @Success      200    {array}   dto.PostResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Router       /api/posts/expired/{topic} [get]
func ListExpiredHandler(svc *services.PostService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		posts, err := svc.ListExpired(ctx, c.Params("topic"))
		if err != nil {
			return err
		}
		return c.JSON(dto.NewPostResponses(posts, svc.Now()))
	}
}

// HighestInterestHandler godoc
// @Summary      Most reacted live post in a topic
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        topic  query     string  true  "Politics, Health, Sport or Tech"
// @Success      200    {object}  dto.PostResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse  "no active posts"
// @Router       /api/posts/active/highest-interest [get]
func HighestInterestHandler(svc *services.PostService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		p, err := svc.HighestInterest(ctx, c.Query("topic"))
		if err != nil {
			return err
		}
		return c.JSON(dto.NewPostResponse(p, svc.Now()))
	}
}

// GetPostHandler godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "post id"
// @Success      200     {object}  dto.PostResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/posts/{postId} [get]
func GetPostHandler(svc *services.PostService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		p, err := svc.Get(ctx, c.Params("postId"))
		if err != nil {
			return err
		}
		return c.JSON(dto.NewPostResponse(p, svc.Now()))
	}
}
