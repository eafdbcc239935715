package controllers

import (
	"github.com/gofiber/fiber/v2"

	"piazza/dto"
	"piazza/internal/apperr"
)

// parseBody decodes and validates a JSON body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.InvalidArgument("invalid body")
	}
	if err := dto.Validate(dst); err != nil {
		return apperr.InvalidArgument(err.Error())
	}
	return nil
}
