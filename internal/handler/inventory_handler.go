package handler

import (
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	service service.InventoryService
	log     *zap.Logger
}

func NewInventoryHandler(s service.InventoryService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{service: s, log: log}
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	p, err := h.service.GetProduct(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(p)
}

// POSProducts is the cashier catalog. Query params: q (name or barcode)
func (h *InventoryHandler) POSProducts(c *fiber.Ctx) error {
	products, err := h.service.AvailableProducts(c.UserContext(), principal(c), c.Query("q"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock(c.UserContext(), principal(c), c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var in model.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	product, err := h.service.CreateProduct(c.UserContext(), principal(c), &in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	var in model.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	updated, err := h.service.UpdateProduct(c.UserContext(), principal(c), id, &in)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.service.DeleteProduct(c.UserContext(), principal(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// POST /api/v1/purchases
func (h *InventoryHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	purchase, err := h.service.RecordPurchase(c.UserContext(), principal(c), &req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Purchase recorded", "data": purchase})
}

func (h *InventoryHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, err := h.service.ListPurchases(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(purchases)
}
