package handler

import (
	"toko-kelontong-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler serves the owner's cashier management.
type UserHandler struct {
	userService service.UserService
	log         *zap.Logger
}

func NewUserHandler(userService service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// GET /api/v1/cashiers
func (h *UserHandler) ListCashiers(c *fiber.Ctx) error {
	users, err := h.userService.ListCashiers(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(users)
}

// POST /api/v1/cashiers
func (h *UserHandler) CreateCashier(c *fiber.Ctx) error {
	var req service.CreateCashierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	user, err := h.userService.CreateCashier(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Cashier created successfully",
		"data":    user,
	})
}

// DELETE /api/v1/cashiers/:id
func (h *UserHandler) DeleteCashier(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid user ID")
	}
	if err := h.userService.DeleteCashier(c.UserContext(), principal(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Cashier deleted"})
}
