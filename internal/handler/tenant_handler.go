package handler

import (
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TenantHandler serves the super admin console and the owner's store settings.
type TenantHandler struct {
	service service.TenantService
	log     *zap.Logger
}

func NewTenantHandler(s service.TenantService, log *zap.Logger) *TenantHandler {
	return &TenantHandler{service: s, log: log}
}

func (h *TenantHandler) List(c *fiber.Ctx) error {
	tenants, err := h.service.List(c.UserContext())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(tenants)
}

func (h *TenantHandler) Create(c *fiber.Ctx) error {
	var req service.TenantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	tenant, err := h.service.Create(c.UserContext(), &req, principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tenant created", "data": tenant})
}

func (h *TenantHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid tenant ID")
	}
	var req service.TenantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	tenant, err := h.service.Update(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Tenant updated", "data": tenant})
}

type statusRequest struct {
	Status model.TenantStatus `json:"status"`
}

// PATCH /api/v1/tenants/:id/status
func (h *TenantHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid tenant ID")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	tenant, err := h.service.SetStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Tenant status updated", "data": tenant})
}

func (h *TenantHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid tenant ID")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Tenant deleted"})
}

// GET /api/v1/admin/stats
func (h *TenantHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(stats)
}

// GET /api/v1/settings/store
func (h *TenantHandler) GetStore(c *fiber.Ctx) error {
	tenant, err := h.service.Store(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(tenant)
}

// PUT /api/v1/settings/store
func (h *TenantHandler) UpdateStore(c *fiber.Ctx) error {
	var req service.TenantRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	tenant, err := h.service.UpdateStore(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Store updated", "data": tenant})
}
