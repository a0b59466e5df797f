package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UsernameKey is where the authenticated username is stored on the request.
const UsernameKey = "username"

type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireAuth validates the bearer token and stores the username in request
// locals. Access-denied responses are never retried by this layer.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		username, err := verifier.VerifyToken(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "could not validate credentials",
			})
		}

		c.Locals(UsernameKey, username)
		return c.Next()
	}
}
