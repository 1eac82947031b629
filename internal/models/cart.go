package models

// CustomProductID is the sentinel product reference for ad-hoc custom juices.
// Custom lines carry their own name/price/description and never deduplicate.
const CustomProductID = -1

// CartItem is one cart line. UserEmail is empty for anonymous carts.
// Name, price and image are snapshots taken at add-time.
type CartItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	UserEmail   string  `gorm:"index" json:"user_email"`
	ProductID   int     `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
}
