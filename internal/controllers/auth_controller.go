package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"piazza/dto"
	"piazza/internal/services"
)

// Register godoc
// @Summary      Register a user
// @Description  Creates an account with a unique username
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "credentials"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse  "missing fields or username taken"
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func Register(svc *services.AuthService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.RegisterRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		u, err := svc.Register(ctx, body.Username, body.Password)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
			Message:  "User registered",
			Username: u.Username,
		})
	}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "credentials"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse  "invalid credentials"
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func Login(svc *services.AuthService, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body dto.LoginRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		token, u, err := svc.Login(ctx, body.Username, body.Password)
		if err != nil {
			return err
		}
		return c.JSON(dto.LoginResponse{Token: token, Username: u.Username})
	}
}
