package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toko-kelontong-pos/internal/cart"
	"toko-kelontong-pos/internal/metrics"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"
	"toko-kelontong-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleStore commits a sale, its items and the stock decrements atomically.
type SaleStore interface {
	Commit(ctx context.Context, sale *model.Sale) error
}

type Publisher interface {
	Publish(tenantID uuid.UUID, v interface{})
}

type Processor struct {
	carts   *cart.Service
	sales   SaleStore
	events  Publisher
	metrics *metrics.Metrics
	timeout time.Duration
	log     *zap.Logger
}

func NewProcessor(carts *cart.Service, sales SaleStore, events Publisher, m *metrics.Metrics, timeout time.Duration, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{carts: carts, sales: sales, events: events, metrics: m, timeout: timeout, log: log}
}

// Checkout commits the caller's cart. The cart is cleared only when the sale
// is stored; on any failure it is kept as it was. A stored sale is always
// reported as committed, even when the cart store cannot be cleared.
func (p *Processor) Checkout(ctx context.Context, who session.Principal, method model.PaymentMethod, received decimal.Decimal) (*Receipt, error) {
	start := time.Now()
	var receipt Receipt
	err := p.carts.Consume(ctx, who, func(c *cart.Cart) error {
		s := NewSession()
		if err := s.Open(c); err != nil {
			return err
		}
		if err := s.SelectPayment(method, received); err != nil {
			return err
		}
		sale, err := s.Confirm(ctx, func(ctx context.Context, method model.PaymentMethod, received decimal.Decimal) (*model.Sale, error) {
			return p.commit(ctx, who, c, method, received)
		})
		if err != nil {
			return err
		}
		receipt = NewReceipt(sale, who.TenantName, who.Name)
		return nil
	})
	p.metrics.CheckoutDone(outcome(err), start)
	if err != nil {
		p.log.Info("checkout rejected",
			zap.String("user_id", who.UserID.String()),
			zap.String("method", string(method)),
			zap.Error(err))
		return nil, err
	}

	p.log.Info("sale committed",
		zap.String("sale_id", receipt.SaleID.String()),
		zap.String("tenant_id", who.TenantID.String()),
		zap.String("total", receipt.Total.String()),
		zap.Duration("took", time.Since(start)))
	p.publish(who, receipt)
	return &receipt, nil
}

func (p *Processor) commit(ctx context.Context, who session.Principal, c *cart.Cart, method model.PaymentMethod, received decimal.Decimal) (*model.Sale, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	items := c.Items()
	total := c.Total()
	paid, change := settle(method, received, total)

	userID := who.UserID
	sale := &model.Sale{
		TenantID:        tenantID,
		UserID:          &userID,
		Total:           total,
		PaymentMethod:   method,
		PaymentReceived: paid,
		ChangeAmount:    change,
		Items:           make([]model.SaleItem, 0, len(items)),
	}
	for _, it := range items {
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.sales.Commit(cctx, sale)

	var conflict *repository.StockConflictError
	switch {
	case err == nil:
	case errors.As(err, &conflict):
		p.metrics.StockConflict()
		name := conflict.ProductID.String()
		for _, it := range items {
			if it.ProductID == conflict.ProductID {
				name = it.ProductName
			}
		}
		return nil, fmt.Errorf("%w: %s no longer has %d in stock", cart.ErrStockExceeded, name, conflict.Requested)
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: timed out after %s", ErrCommitFailed, p.timeout)
	default:
		return nil, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	for i := range sale.Items {
		sale.Items[i].Product = &model.Product{Name: items[i].ProductName}
	}
	return sale, nil
}

func (p *Processor) publish(who session.Principal, r Receipt) {
	if p.events == nil || who.TenantID == nil {
		return
	}
	changes := make([]ws.StockChange, 0, len(r.Items))
	for _, it := range r.Items {
		changes = append(changes, ws.StockChange{ProductID: it.ProductID, Name: it.Name, Delta: -it.Quantity})
	}
	p.events.Publish(*who.TenantID, ws.NewStockUpdate(ws.ActionSaleCommitted, who.UserID, changes,
		fmt.Sprintf("%s completed a sale of %s", who.Name, r.Total.StringFixed(0))))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, cart.ErrStockExceeded):
		return "stock_exceeded"
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ErrInvalidPaymentMethod):
		return "invalid_method"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	}
	return "failed"
}
