package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/naturalpower/internal/config"
	"github.com/example/naturalpower/internal/database"
	"github.com/example/naturalpower/internal/handlers"
	"github.com/example/naturalpower/internal/routes"
	"github.com/example/naturalpower/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "Natural Power Backend",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	mailer := services.NewMailer(cfg)

	var provider services.PaymentProvider
	if cfg.PaymentAccessToken != "" {
		provider = services.NewPaymentClient(cfg.PaymentBaseURL, cfg.PaymentAccessToken, cfg.FrontendBaseURL)
	} else {
		log.Print("payment provider not configured, checkout handoff disabled")
	}

	routes.Register(app, db, cfg, mailer, provider)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
