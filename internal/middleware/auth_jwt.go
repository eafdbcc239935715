package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"piazza/internal/apperr"
	"piazza/internal/models"
)

const userLocal = "user"

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects the request with 401 unless it carries a valid bearer
// token for a user that still exists. The user is stored in Locals.
func RequireAuth(authn Authenticator, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			return apperr.Unauthorized("missing or malformed token")
		}
		token := strings.TrimSpace(header[7:])
		if token == "" {
			return apperr.Unauthorized("missing or malformed token")
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		u, err := authn.Authenticate(ctx, token)
		if err != nil {
			return err
		}
		c.Locals(userLocal, u)
		return c.Next()
	}
}

// CurrentUser returns the user RequireAuth stored for this request.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	u, ok := c.Locals(userLocal).(*models.User)
	if !ok || u == nil {
		return nil, apperr.Unauthorized("missing user in context")
	}
	return u, nil
}
