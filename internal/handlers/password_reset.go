package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/models"
	"github.com/example/naturalpower/internal/services"
	"github.com/example/naturalpower/internal/utils"
)

// PasswordResetHandler manages the forgot-password flow.
type PasswordResetHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	resets *services.ResetTokens
	ledger *services.Ledger
	mailer services.Mailer
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, resets *services.ResetTokens, ledger *services.Ledger, mailer services.Mailer) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, resets: resets, ledger: ledger, mailer: mailer}
}

type recoverPasswordRequest struct {
	Email string `json:"email"`
}

// RecoverPassword issues a reset link. The response is identical whether or
// not the email exists, so the endpoint cannot be used to enumerate accounts.
func (h *PasswordResetHandler) RecoverPassword(c *fiber.Ctx) error {
	var req recoverPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err == nil {
		secret, err := h.resets.Issue(email)
		if err != nil {
			return err
		}

		resetLink := h.cfg.FrontendBaseURL + "/reset/?token=" + secret
		if err := h.mailer.SendPasswordReset(email, resetLink); err != nil {
			// Delivery failure stays invisible to the caller.
			log.Printf("[reset] sending mail to %s failed: %v", email, err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"message": "if your email exists, you will receive a reset link",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword consumes a single-use reset token, replaces the password
// hash and revokes every active session of the user.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token and new_password are required")
	}
	if len(req.NewPassword) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	email, err := h.resets.Consume(req.Token)
	if err != nil {
		if errors.Is(err, services.ErrResetTokenInvalid) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired token")
		}
		return err
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	result := h.db.Model(&models.User{}).
		Where("email = ?", email).
		Update("password_hash", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired token")
	}

	if err := h.ledger.RevokeAll(email); err != nil {
		return err
	}
	h.ledger.TryRecord(email, "PASSWORD_RESET", "password updated via reset link", c.IP())

	return respond(c, fiber.StatusOK, fiber.Map{"message": "password updated"})
}
