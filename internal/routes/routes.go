package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"piazza/config"
	"piazza/internal/middleware"
	"piazza/internal/services"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Config       config.Config
	Auth         *services.AuthService
	Posts        *services.PostService
	Interactions *services.InteractionService
}

func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "piazza",
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(middleware.RequestLogger())
	app.Use(fiberrecover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.Metrics())

	SetupSystem(app)

	timeout := d.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	api := app.Group("/api")
	SetupAuth(api, d.Auth, d.Config.AuthRateLimit, timeout)

	gate := middleware.RequireAuth(d.Auth, timeout)
	SetupRoutesPost(api, d.Posts, gate, timeout)
	SetupRoutesInteraction(api, d.Interactions, gate, timeout)

	return app
}
