package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/models"
	"github.com/example/naturalpower/internal/utils"
)

// AdminHandler manages admin-only endpoints. Routing applies the admin gate.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListProducts returns the full catalog including stock for the admin panel.
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := h.db.Find(&products).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, products)
}

type productCreateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// CreateProduct adds a catalog entry.
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req productCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Price <= 0 || req.Stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product fields")
	}

	if req.Image == "" {
		req.Image = "/static/imagenes/jugo_tropical.png"
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, product)
}

type productUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
}

// UpdateProduct applies the provided fields to an existing product.
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var req productUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "price must be positive")
		}
		product.Price = *req.Price
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "stock must not be negative")
		}
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}

	if err := h.db.Save(&product).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, product)
}

// DeleteProduct removes a catalog entry.
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Delete(&product).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"message": "product deleted"})
}

// ListUsers returns registered users for the admin panel. Password hashes
// never leave the model thanks to its json tag.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var users []models.User
	if err := h.db.Order("id asc").Limit(pg.Limit).Offset(pg.Offset).Find(&users).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, users)
}

// Dashboard returns aggregate statistics for the admin panel.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	var revenue float64
	if err := h.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error; err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"revenue":  revenue,
		"orders":   totalOrders,
		"newUsers": totalUsers,
	})
}
