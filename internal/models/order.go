package models

import "time"

// Order is immutable once created.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"index" json:"user_email"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem is a frozen snapshot of a cart line at order time.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index" json:"order_id"`
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
