package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"piazza/dto"
	"piazza/internal/middleware"
	"piazza/internal/models"
	"piazza/internal/services"
)

type reactFunc func(ctx context.Context, rawPostID string, actor *models.User) (*models.Post, error)

func reactHandler(svc *services.InteractionService, react reactFunc, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		p, err := react(ctx, c.Params("postId"), actor)
		if err != nil {
			return err
		}
		return c.JSON(dto.NewPostResponse(p, svc.Now()))
	}
}

// LikeHandler godoc
// @Summary      Like a post
// @Description  Replaces any dislike by the caller; liking twice changes nothing
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "post id"
// @Success      200     {object}  dto.PostResponse
// @Failure      400     {object}  dto.ErrorResponse  "invalid id or post expired"
// @Failure      401     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse  "owner cannot react"
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/interactions/{postId}/like [post]
func LikeHandler(svc *services.InteractionService, timeout time.Duration) fiber.Handler {
	return reactHandler(svc, svc.Like, timeout)
}

// DislikeHandler godoc
// @Summary      Dislike a post
// @Description  Replaces any like by the caller; disliking twice changes nothing
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string  true  "post id"
// @Success      200     {object}  dto.PostResponse
// @Failure      400     {object}  dto.ErrorResponse  "invalid id or post expired"
// @Failure      401     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse  "owner cannot react"
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/interactions/{postId}/dislike [post]
func DislikeHandler(svc *services.InteractionService, timeout time.Duration) fiber.Handler {
	return reactHandler(svc, svc.Dislike, timeout)
}

// CommentHandler godoc
// @Summary      Comment on a post
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      string                true  "post id"
// @Param        body    body      dto.CreateCommentReq  true  "comment"
// @Success      200     {object}  dto.PostResponse
// @Failure      400     {object}  dto.ErrorResponse  "empty text, invalid id or post expired"
// @Failure      401     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/interactions/{postId}/comment [post]
func CommentHandler(svc *services.InteractionService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.CurrentUser(c)
		if err != nil {
			return err
		}
		var body dto.CreateCommentReq
		if err := parseBody(c, &body); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		p, err := svc.Comment(ctx, c.Params("postId"), actor, body.Text)
		if err != nil {
			return err
		}
		return c.JSON(dto.NewPostResponse(p, svc.Now()))
	}
}
