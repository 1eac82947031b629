package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/middleware"
	"github.com/example/naturalpower/internal/models"
	"github.com/example/naturalpower/internal/services"
)

var errEmptyCart = errors.New("cart is empty")

// OrderHandler manages order endpoints. Checkout is the one multi-step
// invariant-bearing operation of the system.
type OrderHandler struct {
	db     *gorm.DB
	ledger *services.Ledger
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(db *gorm.DB, ledger *services.Ledger) *OrderHandler {
	return &OrderHandler{db: db, ledger: ledger}
}

type checkoutRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// Checkout converts the caller's cart into an order. Order creation, item
// snapshots, stock decrements and the cart delete commit as one transaction:
// either all of them happen or none do.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	// The token identity wins; a body email only stands in when no token
	// was sent.
	email, ok := middleware.CurrentEmail(c)
	if !ok {
		email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if email == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var order models.Order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_email = ?", email).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return errEmptyCart
		}

		// Snapshot pricing: the total comes from the cart lines, not a
		// catalog re-lookup.
		var total float64
		for _, it := range items {
			total += it.Price * float64(it.Quantity)
		}

		order = models.Order{UserEmail: email, Total: total}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Name:      it.Name,
				Price:     it.Price,
				Quantity:  it.Quantity,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			if it.ProductID > 0 {
				var product models.Product
				err := tx.First(&product, it.ProductID).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				if err != nil {
					return err
				}

				// Stock floors at zero; draining past the floor is
				// a no-op, not an error.
				newStock := product.Stock - it.Quantity
				if newStock < 0 {
					newStock = 0
				}
				if err := tx.Model(&product).Update("stock", newStock).Error; err != nil {
					return err
				}
			}
		}

		return tx.Where("user_email = ?", email).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		if errors.Is(err, errEmptyCart) {
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}
		log.Printf("[orders] checkout for %s failed: %v", email, err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create order")
	}

	h.ledger.TryRecord(email, "ORDER_CREATED", "order placed", c.IP())

	return respond(c, fiber.StatusCreated, fiber.Map{
		"id":         order.ID,
		"total":      order.Total,
		"created_at": order.CreatedAt,
	})
}

// ListOrders returns the authenticated user's orders with item snapshots,
// newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	email, _ := middleware.CurrentEmail(c)

	var orders []models.Order
	if err := h.db.Where("user_email = ?", email).Order("created_at desc").Find(&orders).Error; err != nil {
		return err
	}

	result := make([]fiber.Map, 0, len(orders))
	for _, order := range orders {
		var items []models.OrderItem
		if err := h.db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}

		result = append(result, fiber.Map{
			"id":         order.ID,
			"total":      order.Total,
			"created_at": order.CreatedAt,
			"items":      items,
		})
	}

	return respond(c, fiber.StatusOK, result)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel acknowledges an order cancellation request. Fulfillment runs
// outside this system, so the response is a fixed acknowledgement.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")

	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	return respond(c, fiber.StatusOK, fiber.Map{"id": id, "state": "cancelled"})
}

// Tracking reports fulfillment progress. Fulfillment runs outside this
// system, so the payload is canned.
func (h *OrderHandler) Tracking(c *fiber.Ctx) error {
	id := c.Params("id")

	return respond(c, fiber.StatusOK, fiber.Map{
		"id":             id,
		"state":          "in preparation",
		"estimated_time": "14:30",
	})
}
