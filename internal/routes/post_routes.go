package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"piazza/internal/controllers"
	"piazza/internal/services"
)

func SetupRoutesPost(api fiber.Router, svc *services.PostService, gate fiber.Handler, timeout time.Duration) {
	posts := api.Group("/posts", gate)

	posts.Post("/", controllers.CreatePostHandler(svc, timeout))
	posts.Get("/topic/:topic", controllers.ListByTopicHandler(svc, timeout))
	posts.Get("/expired/:topic", controllers.ListExpiredHandler(svc, timeout))
	posts.Get("/active/highest-interest", controllers.HighestInterestHandler(svc, timeout))
	// registered last so the fixed paths above win
	posts.Get("/:postId", controllers.GetPostHandler(svc, timeout))
}
