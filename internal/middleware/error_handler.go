package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"piazza/dto"
	"piazza/internal/apperr"
)

// ErrorHandler is the app-wide fiber.Config ErrorHandler. Internal causes
// are logged and never returned to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := classify(err)
	if status == fiber.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Interface("request_id", c.Locals("requestid")).
			Msg("request failed")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}

func classify(err error) (int, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Kind.HTTPStatus(), appErr.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, "internal server error"
}
