package models

import "time"

// UserSession records one login. Logout and password reset deactivate all
// sessions of the user.
type UserSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserEmail    string    `gorm:"index" json:"user_email"`
	Token        string    `json:"-"`
	LoginTime    time.Time `json:"login_time"`
	LastActivity time.Time `json:"last_activity"`
	IPAddress    string    `json:"ip_address"`
	IsActive     bool      `gorm:"index" json:"is_active"`
}

// UserActivity is an append-only audit row. Writes are best-effort and must
// never fail the operation that triggered them.
type UserActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"index" json:"user_email"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ip_address"`
}
