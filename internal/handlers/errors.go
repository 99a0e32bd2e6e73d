package handlers

import (
	"errors"

	"scango/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps an error kind to the HTTP status returned to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, apperrors.ErrPrecondition):
		return fiber.StatusPreconditionFailed
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrRemote):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the standard error body. Field errors, stock limits
// and failed age checks carry extra keys the clients render.
func respondError(c *fiber.Ctx, logger *zap.Logger, message string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(message, zap.Error(err), zap.String("path", c.Path()))
	} else {
		logger.Debug(message, zap.Error(err), zap.Int("status", status))
	}

	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body["errors"] = verr.Fields
	}
	var stock *apperrors.StockLimitError
	if errors.As(err, &stock) {
		body["product_id"] = stock.ProductID
		body["available"] = stock.Available
	}
	var age *apperrors.AgeVerificationError
	if errors.As(err, &age) {
		body["required_age"] = age.RequiredAge
		body["entered_age"] = age.EnteredAge
	}

	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
