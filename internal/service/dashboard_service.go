package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/shopspring/decimal"
)

// KasirLowStockThreshold is the fixed stock level below which the cashier
// dashboard counts a product as running out.
const KasirLowStockThreshold = 10

type DashboardService interface {
	OwnerStats(ctx context.Context, who session.Principal) (*OwnerStats, error)
	KasirStats(ctx context.Context, who session.Principal) (*KasirStats, error)
	Trend(ctx context.Context, who session.Principal, days int) ([]DailyMovement, error)
}

type OwnerStats struct {
	TotalSales         decimal.Decimal `json:"total_sales"`
	TodaySales         decimal.Decimal `json:"today_sales"`
	YesterdaySales     decimal.Decimal `json:"yesterday_sales"`
	TodayTransactions  int             `json:"today_transactions"`
	SalesChange        string          `json:"sales_change"`
	TransactionsChange string          `json:"transactions_change"`
	LowStockCount      int             `json:"low_stock_count"`
	RecentSales        []model.Sale    `json:"recent_sales"`
}

type KasirStats struct {
	TodaySales        decimal.Decimal `json:"today_sales"`
	TodayTransactions int             `json:"today_transactions"`
	RecentSales       []model.Sale    `json:"recent_sales"`
	LowStockCount     int64           `json:"low_stock_count"`
}

// DailyMovement sums one calendar day of sales and purchases.
type DailyMovement struct {
	Date      string          `json:"date"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
}

type dashboardService struct {
	sales     repository.SaleRepository
	purchases repository.PurchaseRepository
	products  repository.ProductRepository
	now       func() time.Time
}

func NewDashboardService(sales repository.SaleRepository, purchases repository.PurchaseRepository, products repository.ProductRepository) DashboardService {
	return &dashboardService{sales: sales, purchases: purchases, products: products, now: time.Now}
}

func (s *dashboardService) OwnerStats(ctx context.Context, who session.Principal) (*OwnerStats, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	now := s.now()
	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	stats := &OwnerStats{TodaySales: decimal.Zero, YesterdaySales: decimal.Zero}
	if stats.TotalSales, err = s.sales.SumTotal(ctx, tenantID, now); err != nil {
		return nil, err
	}
	twoDays, err := s.sales.FindByRange(ctx, tenantID, yesterday, now)
	if err != nil {
		return nil, err
	}

	yesterdayCount := 0
	for _, sale := range twoDays {
		switch {
		case !sale.CreatedAt.Before(today):
			stats.TodaySales = stats.TodaySales.Add(sale.Total)
			stats.TodayTransactions++
		case !sale.CreatedAt.Before(yesterday):
			stats.YesterdaySales = stats.YesterdaySales.Add(sale.Total)
			yesterdayCount++
		}
	}
	stats.SalesChange = percentChange(stats.TodaySales, stats.YesterdaySales)
	stats.TransactionsChange = percentChange(decimal.NewFromInt(int64(stats.TodayTransactions)), decimal.NewFromInt(int64(yesterdayCount)))

	low, err := s.products.FindLowStock(ctx, tenantID, 0)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = len(low)

	if stats.RecentSales, err = s.sales.FindRecent(ctx, tenantID, 5); err != nil {
		return nil, err
	}
	return stats, nil
}

// KasirStats covers only the calling cashier's own sales since midnight.
func (s *dashboardService) KasirStats(ctx context.Context, who session.Principal) (*KasirStats, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.FindByCashierSince(ctx, tenantID, who.UserID, startOfDay(s.now()))
	if err != nil {
		return nil, err
	}

	stats := &KasirStats{TodaySales: decimal.Zero, TodayTransactions: len(sales)}
	for _, sale := range sales {
		stats.TodaySales = stats.TodaySales.Add(sale.Total)
	}
	if len(sales) > 5 {
		sales = sales[:5]
	}
	stats.RecentSales = sales

	if stats.LowStockCount, err = s.products.CountBelow(ctx, tenantID, KasirLowStockThreshold); err != nil {
		return nil, err
	}
	return stats, nil
}

// Trend returns one row per day for the last n days, oldest first.
func (s *dashboardService) Trend(ctx context.Context, who session.Principal, days int) ([]DailyMovement, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	if days <= 0 || days > 366 {
		return nil, fmt.Errorf("%w: days must be between 1 and 366", ErrValidation)
	}
	now := s.now()
	start := startOfDay(now).AddDate(0, 0, -(days - 1))

	sales, err := s.sales.FindByRange(ctx, tenantID, start, now)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.FindByRange(ctx, tenantID, start, now)
	if err != nil {
		return nil, err
	}

	rows := make([]DailyMovement, days)
	index := make(map[string]int, days)
	for i := range rows {
		key := start.AddDate(0, 0, i).Format("2006-01-02")
		rows[i] = DailyMovement{Date: key, Sales: decimal.Zero, Purchases: decimal.Zero}
		index[key] = i
	}
	for _, sale := range sales {
		if i, ok := index[sale.CreatedAt.In(now.Location()).Format("2006-01-02")]; ok {
			rows[i].Sales = rows[i].Sales.Add(sale.Total)
		}
	}
	for _, p := range purchases {
		if i, ok := index[p.CreatedAt.In(now.Location()).Format("2006-01-02")]; ok {
			rows[i].Purchases = rows[i].Purchases.Add(p.Total)
		}
	}
	return rows, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// percentChange renders the day-over-day change as a whole percentage, "0%"
// when there is nothing to compare against.
func percentChange(current, previous decimal.Decimal) string {
	if !previous.IsPositive() {
		return "0%"
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Float64()
	return fmt.Sprintf("%d%%", int64(math.Round(pct)))
}
