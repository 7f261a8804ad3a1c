package handler

import (
	"errors"

	"toko-kelontong-pos/internal/cart"
	"toko-kelontong-pos/internal/checkout"
	"toko-kelontong-pos/internal/middleware"
	"toko-kelontong-pos/internal/report"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/service"
	"toko-kelontong-pos/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusOf maps a domain error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, report.ErrInvalidPeriod),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, checkout.ErrEmptyCart):
		return fiber.StatusBadRequest
	case errors.Is(err, checkout.ErrInsufficientPayment):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, cart.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, cart.ErrStockExceeded),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, service.ErrEmailExists):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, session.ErrAuthenticationFailure):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, session.ErrNoTenant),
		errors.Is(err, session.ErrUserInactive),
		errors.Is(err, session.ErrTenantInactive),
		errors.Is(err, session.ErrTenantMissing):
		return fiber.StatusForbidden
	case errors.Is(err, checkout.ErrCommitFailed),
		errors.Is(err, session.ErrTransientLookup):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// fail writes {"error": ...}. Unknown errors are logged and hidden.
func fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := statusOf(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		msg = "Internal Server Error"
	}
	body := fiber.Map{"error": msg}
	if status == fiber.StatusUnauthorized || errors.Is(err, session.ErrTenantInactive) {
		body["redirect"] = session.PublicLanding
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func principal(c *fiber.Ctx) session.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}

func paramID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}
