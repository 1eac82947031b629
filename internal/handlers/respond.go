package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// respond writes the uniform {status, body} envelope every endpoint uses.
func respond(c *fiber.Ctx, status int, body any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": status,
		"body":   body,
	})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return respond(c, status, fiber.Map{"error": message})
}

// ErrorHandler is the fiber error handler: every error that escapes a
// handler, including panics recovered by the recover middleware, becomes an
// enveloped response instead of an unhandled fault.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return respondError(c, code, message)
}
