package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/services"
)

// TrackActivity appends an audit row for every API request that carries a
// valid bearer token, after the handler has run. Login and password-recovery
// endpoints are excluded, and a failed write never affects the response.
func TrackActivity(ledger *services.Ledger, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		path := c.Path()
		if !strings.HasPrefix(path, "/api/") ||
			strings.HasPrefix(path, "/api/auth/login") ||
			strings.HasPrefix(path, "/api/auth/recover") {
			return err
		}

		// Resolve the identity from the header directly: public routes
		// carry no auth middleware but their requests are still audited.
		if email, ok := resolveIdentity(c, cfg); ok {
			ledger.TryRecord(email, fmt.Sprintf("%s %s", c.Method(), path),
				fmt.Sprintf("Status: %d", c.Response().StatusCode()), c.IP())
		}

		return err
	}
}
