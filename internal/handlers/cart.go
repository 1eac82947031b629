package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/middleware"
	"github.com/example/naturalpower/internal/models"
)

// CartHandler manages per-user cart lines. Anonymous callers get an empty
// cart keyed by the empty email.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

type customization struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type cartItemRequest struct {
	ProductID     int            `json:"product_id"`
	Quantity      int            `json:"quantity"`
	Customization *customization `json:"customization"`
}

// AddItem puts a product (or a custom juice) into the cart. Repeat adds of
// the same catalog product increment the existing line; custom juices always
// get a fresh line.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
	}

	email, _ := middleware.CurrentEmail(c)

	if req.ProductID == models.CustomProductID {
		custom := customization{
			Name:        "Jugo Personalizado",
			Description: "Jugo personalizado",
		}
		if req.Customization != nil {
			if strings.TrimSpace(req.Customization.Name) != "" {
				custom.Name = req.Customization.Name
			}
			if strings.TrimSpace(req.Customization.Description) != "" {
				custom.Description = req.Customization.Description
			}
			custom.Price = req.Customization.Price
		}

		item := models.CartItem{
			UserEmail:   email,
			ProductID:   models.CustomProductID,
			Name:        custom.Name,
			Price:       custom.Price,
			Image:       "/static/imagenes/jugo_tropical.png",
			Description: custom.Description,
			Quantity:    req.Quantity,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}

		return respond(c, fiber.StatusCreated, item)
	}

	var product models.Product
	if err := h.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var item models.CartItem
	err := h.db.Where("user_email = ? AND product_id = ?", email, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserEmail: email,
			ProductID: int(product.ID),
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  req.Quantity,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	default:
		return err
	}

	return respond(c, fiber.StatusCreated, item)
}

// UpdateItem changes a line's quantity (and optionally its product
// reference) after checking ownership and available stock.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	email, ok := middleware.CurrentEmail(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
	}

	var item models.CartItem
	if err := h.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "item not found")
		}
		return err
	}
	if item.UserEmail != email {
		return fiber.NewError(fiber.StatusForbidden, "not your cart item")
	}

	productID := item.ProductID
	if req.ProductID != 0 {
		productID = req.ProductID
	}

	if productID > 0 {
		var product models.Product
		if err := h.db.First(&product, productID).Error; err == nil {
			if req.Quantity > product.Stock {
				return fiber.NewError(fiber.StatusBadRequest, "insufficient stock")
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	item.Quantity = req.Quantity
	if req.ProductID != 0 {
		item.ProductID = req.ProductID
	}
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, item)
}

// RemoveItem deletes a cart line owned by the caller. Removing an id that is
// already gone is a NotFound, never a fault.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	email, _ := middleware.CurrentEmail(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var item models.CartItem
	if err := h.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "item not found")
		}
		return err
	}
	if item.UserEmail != email {
		return fiber.NewError(fiber.StatusForbidden, "not your cart item")
	}

	if err := h.db.Delete(&item).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"deleted": item.ID})
}

// ListItems returns the caller's cart lines. Anonymous callers get an empty
// list, never an error.
func (h *CartHandler) ListItems(c *fiber.Ctx) error {
	email, ok := middleware.CurrentEmail(c)
	if !ok {
		return respond(c, fiber.StatusOK, []models.CartItem{})
	}

	var items []models.CartItem
	if err := h.db.Where("user_email = ?", email).Find(&items).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, items)
}

type couponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon validates a discount code. Only the launch promo exists.
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.EqualFold(req.Code, "NATURAL10") {
		return respond(c, fiber.StatusOK, fiber.Map{
			"id":             1,
			"previous_total": 10000,
			"discount":       1000,
			"new_total":      9000,
		})
	}

	return fiber.NewError(fiber.StatusNotFound, "coupon invalid or expired")
}
