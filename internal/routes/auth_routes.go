package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"piazza/dto"
	"piazza/internal/controllers"
	"piazza/internal/services"
)

// SetupAuth mounts register and login under /api/auth, limited to
// perMinute requests per client IP. A non-positive limit disables it.
func SetupAuth(api fiber.Router, svc *services.AuthService, perMinute int, timeout time.Duration) {
	var handlers []fiber.Handler
	if perMinute > 0 {
		handlers = append(handlers, limiter.New(limiter.Config{
			Max:        perMinute,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Error: "too many requests"})
			},
		}))
	}
	auth := api.Group("/auth", handlers...)

	auth.Post("/register", controllers.Register(svc, timeout))
	// curl -X POST http://127.0.0.1:3000/api/auth/register \
	// -H "Content-Type: application/json" \
	// -d '{"username": "alice", "password": "wonderland"}'

	auth.Post("/login", controllers.Login(svc, timeout))
}
