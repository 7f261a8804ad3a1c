package report

import (
	"context"
	"time"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SaleSource interface {
	FindByRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Sale, error)
}

type PurchaseSource interface {
	FindByRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Purchase, error)
}

type SaleRow struct {
	ID            uuid.UUID           `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	Cashier       string              `json:"cashier"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	PaymentLabel  string              `json:"payment_label"`
	Total         decimal.Decimal     `json:"total"`
}

type PurchaseRow struct {
	ID            uuid.UUID           `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	Supplier      string              `json:"supplier"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	StatusLabel   string              `json:"status_label"`
	Total         decimal.Decimal     `json:"total"`
}

// Report is one period's sales and purchases. Profit is gross: sales minus
// purchases recorded in the same window.
type Report struct {
	Period           Period          `json:"period"`
	Label            string          `json:"label"`
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalPurchases   decimal.Decimal `json:"total_purchases"`
	Profit           decimal.Decimal `json:"profit"`
	TransactionCount int             `json:"transaction_count"`
	AverageSale      decimal.Decimal `json:"average_sale"`
	Sales            []SaleRow       `json:"sales"`
	Purchases        []PurchaseRow   `json:"purchases"`
}

type Service struct {
	sales     SaleSource
	purchases PurchaseSource
	log       *zap.Logger
	now       func() time.Time
}

func NewService(sales SaleSource, purchases PurchaseSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{sales: sales, purchases: purchases, log: log, now: time.Now}
}

func (s *Service) Build(ctx context.Context, who session.Principal, period Period) (*Report, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	start, end := period.Range(s.now())

	sales, err := s.sales.FindByRange(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.FindByRange(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Period:         period,
		Label:          period.Label(),
		Start:          start,
		End:            end,
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		AverageSale:    decimal.Zero,
		Sales:          make([]SaleRow, 0, len(sales)),
		Purchases:      make([]PurchaseRow, 0, len(purchases)),
	}
	for _, sale := range sales {
		row := SaleRow{
			ID:            sale.ID,
			CreatedAt:     sale.CreatedAt,
			Cashier:       "-",
			PaymentMethod: sale.PaymentMethod,
			PaymentLabel:  sale.PaymentMethod.Label(),
			Total:         sale.Total,
		}
		if sale.User != nil {
			row.Cashier = sale.User.FullName
		}
		r.Sales = append(r.Sales, row)
		r.TotalSales = r.TotalSales.Add(sale.Total)
	}
	for _, p := range purchases {
		row := PurchaseRow{
			ID:            p.ID,
			CreatedAt:     p.CreatedAt,
			Supplier:      "-",
			PaymentStatus: p.PaymentStatus,
			StatusLabel:   p.PaymentStatus.Label(),
			Total:         p.Total,
		}
		if p.Supplier != nil {
			row.Supplier = p.Supplier.Name
		}
		r.Purchases = append(r.Purchases, row)
		r.TotalPurchases = r.TotalPurchases.Add(p.Total)
	}

	r.TransactionCount = len(r.Sales)
	r.Profit = r.TotalSales.Sub(r.TotalPurchases)
	if r.TransactionCount > 0 {
		r.AverageSale = r.TotalSales.DivRound(decimal.NewFromInt(int64(r.TransactionCount)), 2)
	}
	return r, nil
}
