package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"piazza/internal/metrics"
)

// Metrics labels requests by route pattern, so /api/posts/:postId is one
// series regardless of id.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _ = classify(err)
		}
		route := c.Route().Path
		metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
