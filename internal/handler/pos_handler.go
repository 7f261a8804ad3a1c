package handler

import (
	"toko-kelontong-pos/internal/cart"
	"toko-kelontong-pos/internal/checkout"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// POSHandler serves the cashier screen: cart, checkout and receipts.
type POSHandler struct {
	carts     *cart.Service
	processor *checkout.Processor
	sales     service.SaleService
	log       *zap.Logger
}

func NewPOSHandler(carts *cart.Service, processor *checkout.Processor, sales service.SaleService, log *zap.Logger) *POSHandler {
	return &POSHandler{carts: carts, processor: processor, sales: sales, log: log}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

type checkoutRequest struct {
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	PaymentReceived decimal.Decimal     `json:"payment_received"`
}

// GET /api/v1/cart
func (h *POSHandler) GetCart(c *fiber.Ctx) error {
	ct, err := h.carts.Get(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(ct)
}

// POST /api/v1/cart/items
func (h *POSHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if req.ProductID == uuid.Nil {
		return badRequest(c, "product_id is required")
	}
	ct, err := h.carts.Add(c.UserContext(), principal(c), req.ProductID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(ct)
}

// PATCH /api/v1/cart/items/:id with {"delta": 1} or {"delta": -1}
func (h *POSHandler) AdjustItem(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	ct, err := h.carts.Adjust(c.UserContext(), principal(c), id, req.Delta)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(ct)
}

// DELETE /api/v1/cart/items/:id
func (h *POSHandler) RemoveItem(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	ct, err := h.carts.Remove(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(ct)
}

// DELETE /api/v1/cart
func (h *POSHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.carts.Clear(c.UserContext(), principal(c)); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(cart.New())
}

// POST /api/v1/checkout
func (h *POSHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	receipt, err := h.processor.Checkout(c.UserContext(), principal(c), req.PaymentMethod, req.PaymentReceived)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaksi berhasil", "receipt": receipt})
}

// GET /api/v1/sales/:id/receipt
func (h *POSHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "Invalid sale ID")
	}
	receipt, err := h.sales.Receipt(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(receipt)
}
