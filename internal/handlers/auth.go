package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/middleware"
	"github.com/example/naturalpower/internal/models"
	"github.com/example/naturalpower/internal/services"
	"github.com/example/naturalpower/internal/utils"
)

// AuthHandler bundles dependencies for account and session endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	ledger *services.Ledger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, ledger *services.Ledger) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, ledger: ledger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Address:      req.Address,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	h.ledger.TryRecord(user.Email, "REGISTERED", "user "+user.Name+" registered", c.IP())

	return respond(c, fiber.StatusCreated, fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials, issues a token and records the session plus a
// login activity row. Failed attempts leave exactly one activity row and no
// session.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if lerr := h.ledger.RecordFailedLogin(req.Email, "user not found", c.IP()); lerr != nil {
				return lerr
			}
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		if lerr := h.ledger.RecordFailedLogin(req.Email, "wrong password", c.IP()); lerr != nil {
			return lerr
		}
		return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	if err := h.ledger.RecordLogin(user.Email, token, c.IP()); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// Logout deactivates every active session of the authenticated user.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	email, _ := middleware.CurrentEmail(c)

	if err := h.ledger.RevokeAll(email); err != nil {
		return err
	}
	h.ledger.TryRecord(email, "LOGOUT", "user logged out", c.IP())

	return respond(c, fiber.StatusOK, fiber.Map{"message": "session closed"})
}

// Me returns the authenticated user's profile with session and admin info.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	email, _ := middleware.CurrentEmail(c)

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	sessions, err := h.ledger.ActiveSessions(email)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"address":         user.Address,
		"active_sessions": len(sessions),
		"is_admin":        middleware.IsAdmin(h.db, h.cfg, email),
	})
}

// MyActivity returns the authenticated user's recent activity rows.
func (h *AuthHandler) MyActivity(c *fiber.Ctx) error {
	email, _ := middleware.CurrentEmail(c)

	limit := c.QueryInt("limit", 20)
	activities, err := h.ledger.RecentActivity(email, limit)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"activities": activities})
}

// MySessions returns the authenticated user's active sessions.
func (h *AuthHandler) MySessions(c *fiber.Ctx) error {
	email, _ := middleware.CurrentEmail(c)

	sessions, err := h.ledger.ActiveSessions(email)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"sessions": sessions})
}
