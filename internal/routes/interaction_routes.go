package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"piazza/internal/controllers"
	"piazza/internal/services"
)

func SetupRoutesInteraction(api fiber.Router, svc *services.InteractionService, gate fiber.Handler, timeout time.Duration) {
	interactions := api.Group("/interactions", gate)

	interactions.Post("/:postId/like", controllers.LikeHandler(svc, timeout))
	interactions.Post("/:postId/dislike", controllers.DislikeHandler(svc, timeout))
	interactions.Post("/:postId/comment", controllers.CommentHandler(svc, timeout))
}
