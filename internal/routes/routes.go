package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/handlers"
	"github.com/example/naturalpower/internal/middleware"
	"github.com/example/naturalpower/internal/services"
)

// Register wires up all HTTP routes. The mailer and payment provider come
// from the caller so tests can substitute fakes; provider may be nil when
// unconfigured.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, mailer services.Mailer, provider services.PaymentProvider) {
	ledger := services.NewLedger(db)
	resets := services.NewResetTokens(db)

	authHandler := handlers.NewAuthHandler(db, cfg, ledger)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, resets, ledger, mailer)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db, ledger)
	paymentHandler := handlers.NewPaymentHandler(db, provider, ledger)
	adminHandler := handlers.NewAdminHandler(db)
	reportsHandler := handlers.NewReportsHandler()

	api := app.Group("/api", middleware.TrackActivity(ledger, cfg))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": fiber.StatusOK,
			"body": fiber.Map{
				"ok":   true,
				"time": time.Now().UTC().Format(time.RFC3339),
			},
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/recover-password", resetHandler.RecoverPassword)
	auth.Post("/reset-password", resetHandler.ResetPassword)

	// Authenticated profile routes
	me := api.Group("/users/me", middleware.RequireAuth(cfg))
	me.Get("/", authHandler.Me)
	me.Get("/activity", authHandler.MyActivity)
	me.Get("/sessions", authHandler.MySessions)
	me.Post("/logout", authHandler.Logout)
	me.Get("/points", reportsHandler.LoyaltyPoints)

	// Public catalog
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/filter", productHandler.Filter)
	products.Put("/:id/stock", middleware.RequireAuth(cfg), middleware.RequireAdmin(db, cfg), productHandler.UpdateStock)

	// Cart routes accept anonymous callers
	cart := api.Group("/cart", middleware.OptionalAuth(cfg))
	cart.Get("/", cartHandler.ListItems)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:id", cartHandler.UpdateItem)
	cart.Delete("/items/:id", cartHandler.RemoveItem)
	cart.Post("/apply-coupon", cartHandler.ApplyCoupon)

	// Orders
	orders := api.Group("/orders", middleware.OptionalAuth(cfg))
	orders.Post("/", orderHandler.Checkout)
	orders.Get("/", middleware.RequireAuth(cfg), orderHandler.ListOrders)
	orders.Put("/:id/cancel", orderHandler.Cancel)
	orders.Get("/:id/tracking", orderHandler.Tracking)

	// Payment provider handoff
	payments := api.Group("/payments")
	payments.Post("/preferences", middleware.OptionalAuth(cfg), paymentHandler.CreatePreference)
	payments.Post("/webhook", paymentHandler.Webhook)

	// Receipts, reports and notifications
	api.Post("/receipts/send", reportsHandler.SendReceipt)
	api.Get("/reports/sales", reportsHandler.SalesReport)
	api.Get("/reports/sales/export", reportsHandler.ExportSales)
	api.Post("/notifications/offers", reportsHandler.SendOffer)

	// Admin panel
	admin := api.Group("/admin", middleware.RequireAuth(cfg), middleware.RequireAdmin(db, cfg))
	admin.Get("/products", adminHandler.ListProducts)
	admin.Post("/products", adminHandler.CreateProduct)
	admin.Put("/products/:id", adminHandler.UpdateProduct)
	admin.Delete("/products/:id", adminHandler.DeleteProduct)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/dashboard", adminHandler.Dashboard)
}
