package handler

import (
	"toko-kelontong-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *zap.Logger
}

func NewDashboardHandler(s service.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, log: log}
}

func (h *DashboardHandler) Owner(c *fiber.Ctx) error {
	stats, err := h.service.OwnerStats(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(stats)
}

func (h *DashboardHandler) Kasir(c *fiber.Ctx) error {
	stats, err := h.service.KasirStats(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(stats)
}

// Trend returns daily sales and purchase totals for charts.
// Query params: days (default 7)
func (h *DashboardHandler) Trend(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	data, err := h.service.Trend(c.UserContext(), principal(c), days)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
