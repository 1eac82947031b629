package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/models"
	"github.com/example/naturalpower/internal/utils"
)

// ProductHandler manages public catalog endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// List returns catalog entries with pagination.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var products []models.Product
	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).Find(&products).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, products)
}

// Filter returns catalog entries matching the category query param.
func (h *ProductHandler) Filter(c *fiber.Ctx) error {
	query := h.db.Model(&models.Product{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, products)
}

type stockUpdateRequest struct {
	Stock int `json:"stock"`
}

// UpdateStock sets a product's stock count. Admin-gated via routing.
func (h *ProductHandler) UpdateStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var req stockUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock must not be negative")
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Model(&product).Update("stock", req.Stock).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"id": product.ID, "stock": req.Stock})
}
