package handler

import (
	"fmt"

	"toko-kelontong-pos/internal/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports *report.Service
	log     *zap.Logger
}

func NewReportHandler(reports *report.Service, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// GET /api/v1/reports?period=today|week|month|year
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	period, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		return fail(c, h.log, err)
	}
	r, err := h.reports.Build(c.UserContext(), principal(c), period)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(r)
}

// GET /api/v1/reports/export?period=...
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	period, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		return fail(c, h.log, err)
	}
	name, data, err := h.reports.Export(c.UserContext(), principal(c), period)
	if err != nil {
		return fail(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, report.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}
