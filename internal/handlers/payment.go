package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/middleware"
	"github.com/example/naturalpower/internal/models"
	"github.com/example/naturalpower/internal/services"
)

// PaymentHandler relays checkouts and notifications to the external payment
// provider. The provider is injected and may be nil when unconfigured.
type PaymentHandler struct {
	db       *gorm.DB
	provider services.PaymentProvider
	ledger   *services.Ledger
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(db *gorm.DB, provider services.PaymentProvider, ledger *services.Ledger) *PaymentHandler {
	return &PaymentHandler{db: db, provider: provider, ledger: ledger}
}

type preferenceItemRequest struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	PictureURL string  `json:"picture_url"`
	CurrencyID string  `json:"currency_id"`
}

type preferenceRequest struct {
	Items    []preferenceItemRequest `json:"items"`
	Metadata map[string]any          `json:"metadata"`
}

// CreatePreference records a provisional order for the submitted items and
// asks the provider for a hosted checkout URL. The provider call runs inside
// the same transaction as the order insert, so a provider failure leaves no
// local state behind.
func (h *PaymentHandler) CreatePreference(c *fiber.Ctx) error {
	if h.provider == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "payment provider not configured")
	}

	var req preferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "items are required")
	}
	for _, it := range req.Items {
		if it.Title == "" || it.Quantity <= 0 || it.UnitPrice <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid item")
		}
	}

	email, _ := middleware.CurrentEmail(c)

	var session services.CheckoutSession
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		for _, it := range req.Items {
			total += it.UnitPrice * float64(it.Quantity)
		}

		order := models.Order{UserEmail: email, Total: total}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items := make([]services.CheckoutItem, 0, len(req.Items))
		for _, it := range req.Items {
			orderItem := models.OrderItem{
				OrderID:  order.ID,
				Name:     it.Title,
				Price:    it.UnitPrice,
				Quantity: it.Quantity,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			currency := it.CurrencyID
			if currency == "" {
				currency = "CLP"
			}
			items = append(items, services.CheckoutItem{
				Title:      it.Title,
				Quantity:   it.Quantity,
				UnitPrice:  it.UnitPrice,
				PictureURL: it.PictureURL,
				CurrencyID: currency,
			})
		}

		metadata := map[string]any{"order_id": order.ID}
		for k, v := range req.Metadata {
			if k != "order_id" {
				metadata[k] = v
			}
		}

		var err error
		session, err = h.provider.CreatePreference(c.Context(), items, metadata)
		return err
	})
	if err != nil {
		log.Printf("[payments] preference creation failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create payment preference")
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"preference_id": session.PreferenceID,
		"init_point":    session.InitPoint,
	})
}

// Webhook receives provider notifications. Only `type == "payment"` with a
// resolvable payment id triggers processing; every other shape is
// acknowledged and ignored, and the endpoint never returns a non-200 so the
// provider stops retrying.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if h.provider == nil {
		return respond(c, fiber.StatusOK, fiber.Map{"ok": false, "reason": "provider_not_configured"})
	}

	var payload map[string]any
	if err := c.BodyParser(&payload); err != nil {
		return respond(c, fiber.StatusOK, fiber.Map{"ok": true, "ignored": true})
	}

	notifType, _ := payload["type"].(string)
	if notifType == "" {
		notifType, _ = payload["action"].(string)
	}

	paymentID := extractPaymentID(payload)
	if notifType != "payment" || paymentID == "" {
		return respond(c, fiber.StatusOK, fiber.Map{"ok": true, "ignored": true})
	}

	payment, err := h.provider.GetPayment(c.Context(), paymentID)
	if err != nil {
		log.Printf("[payments] webhook lookup of payment %s failed: %v", paymentID, err)
		return respond(c, fiber.StatusOK, fiber.Map{"ok": false, "error": err.Error()})
	}

	orderID := orderIDFromMetadata(payment.Metadata)
	if payment.Status == "approved" && orderID != 0 {
		var order models.Order
		if err := h.db.First(&order, orderID).Error; err == nil && order.UserEmail != "" {
			h.ledger.TryRecord(order.UserEmail, "PAYMENT_CONFIRMED",
				fmt.Sprintf("payment %s approved for order %d", payment.ID, order.ID), c.IP())
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[payments] order lookup for webhook failed: %v", err)
		}

		return respond(c, fiber.StatusOK, fiber.Map{
			"ok":       true,
			"order_id": orderID,
			"status":   "approved",
		})
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"ok":       true,
		"status":   payment.Status,
		"order_id": orderID,
	})
}

// extractPaymentID pulls the payment id from `data.id` or, failing that,
// from the trailing segment of a `resource` URL.
func extractPaymentID(payload map[string]any) string {
	if data, ok := payload["data"].(map[string]any); ok {
		switch id := data["id"].(type) {
		case string:
			return id
		case float64:
			return fmt.Sprintf("%.0f", id)
		}
	}

	if resource, ok := payload["resource"].(string); ok && resource != "" {
		trimmed := strings.TrimRight(resource, "/")
		if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
			return trimmed[idx+1:]
		}
		return trimmed
	}

	return ""
}

func orderIDFromMetadata(metadata map[string]any) uint {
	switch v := metadata["order_id"].(type) {
	case float64:
		return uint(v)
	case int:
		return uint(v)
	case string:
		var id uint
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			return id
		}
	}
	return 0
}
