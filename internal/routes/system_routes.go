package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "piazza/docs"
	"piazza/dto"
)

func SetupSystem(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(dto.MessageResponse{Message: "Piazza API is running"})
	})

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger API document
	app.Get("/docs/*", swagger.HandlerDefault)
}
