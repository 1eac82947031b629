package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/models"
)

// RequireAdmin gates privileged routes. When ADMIN_EMAILS is configured only
// those addresses are admins; when it is empty, exactly the first-ever
// registered user (lowest ID) is. The fallback is a deliberate bootstrap
// affordance so a fresh install has a usable admin panel.
func RequireAdmin(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := CurrentEmail(c)
		if !ok || !IsAdmin(db, cfg, email) {
			return fiber.NewError(fiber.StatusForbidden, "admin required")
		}
		return c.Next()
	}
}

// IsAdmin reports whether the email is entitled to admin operations.
func IsAdmin(db *gorm.DB, cfg *config.Config, email string) bool {
	if email == "" {
		return false
	}
	norm := strings.ToLower(email)

	if len(cfg.AdminEmails) > 0 {
		for _, admin := range cfg.AdminEmails {
			if norm == admin {
				return true
			}
		}
		return false
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return false
	}

	var firstID uint
	row := db.Model(&models.User{}).Select("MIN(id)").Row()
	if err := row.Scan(&firstID); err != nil {
		return false
	}

	return user.ID == firstID
}
