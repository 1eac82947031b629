package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/models"
)

// Ledger records sessions and per-user activity. Activity rows are
// append-only; session rows flip to inactive on logout or password reset.
type Ledger struct {
	db *gorm.DB
}

// NewLedger constructs a Ledger.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// RecordLogin inserts an active session and its login activity row in one
// transaction, so a reader never observes one without the other.
func (l *Ledger) RecordLogin(email, token, ip string) error {
	now := time.Now().UTC()
	return l.db.Transaction(func(tx *gorm.DB) error {
		session := models.UserSession{
			UserEmail:    email,
			Token:        token,
			LoginTime:    now,
			LastActivity: now,
			IPAddress:    ip,
			IsActive:     true,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		activity := models.UserActivity{
			UserEmail: email,
			Action:    "LOGIN_SUCCEEDED",
			Details:   "user logged in",
			Timestamp: now,
			IPAddress: ip,
		}
		return tx.Create(&activity).Error
	})
}

// RecordFailedLogin appends a failed-login activity row. No session is created.
func (l *Ledger) RecordFailedLogin(email, reason, ip string) error {
	activity := models.UserActivity{
		UserEmail: email,
		Action:    "LOGIN_FAILED",
		Details:   reason,
		Timestamp: time.Now().UTC(),
		IPAddress: ip,
	}
	return l.db.Create(&activity).Error
}

// RecordActivity appends an activity row.
func (l *Ledger) RecordActivity(email, action, details, ip string) error {
	activity := models.UserActivity{
		UserEmail: email,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
		IPAddress: ip,
	}
	return l.db.Create(&activity).Error
}

// TryRecord is the best-effort variant of RecordActivity: failures are logged
// and swallowed so tracking can never break the operation it observes.
func (l *Ledger) TryRecord(email, action, details, ip string) {
	if err := l.RecordActivity(email, action, details, ip); err != nil {
		log.Printf("[ledger] activity write failed for %s: %v", email, err)
	}
}

// RevokeAll deactivates every active session of the user. Idempotent: a
// second call matches no rows.
func (l *Ledger) RevokeAll(email string) error {
	return l.db.Model(&models.UserSession{}).
		Where("user_email = ? AND is_active = ?", email, true).
		Update("is_active", false).Error
}

// ActiveSessions returns the user's active sessions, most recent login first.
func (l *Ledger) ActiveSessions(email string) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := l.db.Where("user_email = ? AND is_active = ?", email, true).
		Order("login_time desc").
		Find(&sessions).Error
	return sessions, err
}

// RecentActivity returns the user's latest activity rows, newest first.
func (l *Ledger) RecentActivity(email string, limit int) ([]models.UserActivity, error) {
	if limit <= 0 {
		limit = 20
	}

	var activities []models.UserActivity
	err := l.db.Where("user_email = ?", email).
		Order("timestamp desc").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
