package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Team-TALIX/legalhelp-gh-api/internal/nlp"
	"github.com/Team-TALIX/legalhelp-gh-api/internal/services"
)

// FieldError points a validation failure at the offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func respondValidation(c *fiber.Ctx, fieldErrors []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  fieldErrors,
	})
}

// respondServiceError maps service and provider errors onto HTTP
// statuses. Unknown errors log and answer 500 without leaking internals.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return respondError(c, fiber.StatusNotFound, "Chat session not found")
	case errors.Is(err, services.ErrMessageNotFound):
		return respondError(c, fiber.StatusNotFound, "Message not found")
	case errors.Is(err, services.ErrForbidden):
		return respondError(c, fiber.StatusForbidden, "You do not have access to this session")
	case errors.Is(err, services.ErrInvalidMessageIndex):
		return respondError(c, fiber.StatusBadRequest, "Message index out of range")
	case errors.Is(err, nlp.ErrUnsupportedLanguage):
		return respondError(c, fiber.StatusBadRequest, "Language not supported")
	case errors.Is(err, nlp.ErrUpstreamUnavailable):
		return respondError(c, fiber.StatusBadGateway, "Language service temporarily unavailable")
	default:
		slog.Error("Unhandled service error", "path", c.Path(), "error", err)
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
