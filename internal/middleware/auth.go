package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/utils"
)

const emailContextKey = "currentUserEmail"

// RequireAuth validates the bearer token and loads the authenticated email
// into the request context. Missing or invalid tokens are rejected with 401.
func RequireAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := resolveIdentity(c, cfg)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(emailContextKey, email)
		return c.Next()
	}
}

// OptionalAuth loads the identity when a valid bearer token is present and
// continues anonymously otherwise. The cart accepts anonymous callers.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if email, ok := resolveIdentity(c, cfg); ok {
			c.Locals(emailContextKey, email)
		}
		return c.Next()
	}
}

// CurrentEmail extracts the authenticated email from context.
func CurrentEmail(c *fiber.Ctx) (string, bool) {
	value := c.Locals(emailContextKey)
	if value == nil {
		return "", false
	}

	if email, ok := value.(string); ok && email != "" {
		return email, true
	}

	return "", false
}

func resolveIdentity(c *fiber.Ctx, cfg *config.Config) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	// Accept both "Bearer <token>" and a raw token.
	token := authHeader
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		token = parts[1]
	}

	email, err := utils.ParseToken(cfg.JWTSecret, token)
	if err != nil {
		return "", false
	}

	return email, true
}
