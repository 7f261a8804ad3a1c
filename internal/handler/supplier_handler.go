package handler

import (
	"toko-kelontong-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SupplierHandler struct {
	service service.SupplierService
	log     *zap.Logger
}

func NewSupplierHandler(s service.SupplierService, log *zap.Logger) *SupplierHandler {
	return &SupplierHandler{service: s, log: log}
}

func (h *SupplierHandler) List(c *fiber.Ctx) error {
	suppliers, err := h.service.List(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(suppliers)
}

func (h *SupplierHandler) Create(c *fiber.Ctx) error {
	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	sup, err := h.service.Create(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Supplier created", "data": sup})
}

func (h *SupplierHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid supplier ID")
	}
	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	sup, err := h.service.Update(c.UserContext(), principal(c), id, &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": sup})
}

func (h *SupplierHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid supplier ID")
	}
	if err := h.service.Delete(c.UserContext(), principal(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}
