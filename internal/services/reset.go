package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/models"
)

// ErrResetTokenInvalid covers every consume failure: unknown, expired and
// already-used secrets all look the same to the caller, so a response can
// never reveal which one happened.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

const resetTokenTTL = 30 * time.Minute

// ResetTokens issues and consumes single-use password-reset secrets. Only a
// sha256 hash of the secret is ever stored.
type ResetTokens struct {
	db *gorm.DB
}

// NewResetTokens constructs a ResetTokens service.
func NewResetTokens(db *gorm.DB) *ResetTokens {
	return &ResetTokens{db: db}
}

// Issue generates a high-entropy secret for the email, persists its hash
// with a 30-minute expiry and returns the raw secret.
func (r *ResetTokens) Issue(email string) (string, error) {
	raw := make([]byte, 48)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	record := models.PasswordResetToken{
		Email:     email,
		TokenHash: hashSecret(secret),
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
		Used:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.Create(&record).Error; err != nil {
		return "", err
	}

	return secret, nil
}

// Consume validates the secret and marks it used, returning the associated
// email. Each secret is accepted at most once and only before its expiry.
func (r *ResetTokens) Consume(secret string) (string, error) {
	tokenHash := hashSecret(secret)

	var email string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var record models.PasswordResetToken
		err := tx.Where("token_hash = ?", tokenHash).
			Order("created_at desc").
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		if err != nil {
			return err
		}

		if record.Used || record.ExpiresAt.Before(time.Now().UTC()) {
			return ErrResetTokenInvalid
		}

		if err := tx.Model(&record).Update("used", true).Error; err != nil {
			return err
		}

		email = record.Email
		return nil
	})
	if err != nil {
		return "", err
	}

	return email, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
