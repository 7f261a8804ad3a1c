package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"toko-kelontong-pos/internal/cart"
	"toko-kelontong-pos/internal/dbtest"
	"toko-kelontong-pos/internal/metrics"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type published struct {
	mu     sync.Mutex
	events []interface{}
}

func (p *published) Publish(_ uuid.UUID, v interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, v)
}

type env struct {
	db       *gorm.DB
	tenant   *model.Tenant
	who      session.Principal
	products repository.ProductRepository
	carts    *cart.Service
	events   *published
	metrics  *metrics.Metrics
	proc     *Processor
}

func setup(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	tenant := dbtest.Tenant(t, db, "Toko Berkah", model.TenantActive)
	cashier := dbtest.User(t, db, "kasir@berkah.id", model.RoleKasir, &tenant.ID)
	products := repository.NewProductRepo(db)
	carts := cart.NewService(cart.NewMemoryStore(time.Hour), products, nil)
	events := &published{}
	m := metrics.New()
	return &env{
		db:     db,
		tenant: tenant,
		who: session.Principal{
			UserID: cashier.ID, Name: "Siti", Role: model.RoleKasir,
			TenantID: &tenant.ID, TenantName: tenant.Name, TenantStatus: tenant.Status, TokenVersion: "v1",
		},
		products: products,
		carts:    carts,
		events:   events,
		metrics:  m,
		proc:     NewProcessor(carts, repository.NewSaleRepo(db, products), events, m, 5*time.Second, nil),
	}
}

func (e *env) fill(t *testing.T) (*model.Product, *model.Product) {
	t.Helper()
	a := dbtest.Product(t, e.db, e.tenant.ID, "A", 10000, 5)
	b := dbtest.Product(t, e.db, e.tenant.ID, "B", 25000, 1)
	ctx := context.Background()
	for _, id := range []uuid.UUID{a.ID, a.ID, b.ID} {
		_, err := e.carts.Add(ctx, e.who, id)
		require.NoError(t, err)
	}
	return a, b
}

func (e *env) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), e.tenant.ID, id)
	require.NoError(t, err)
	return p.Stock
}

func TestCheckout_CashCommit(t *testing.T) {
	e := setup(t)
	a, b := e.fill(t)
	ctx := context.Background()

	receipt, err := e.proc.Checkout(ctx, e.who, model.PaymentCash, d(50000))
	require.NoError(t, err)
	assert.True(t, receipt.Total.Equal(d(45000)))
	assert.True(t, receipt.Change.Equal(d(5000)))
	assert.True(t, receipt.PaymentReceived.Equal(d(50000)))
	assert.Equal(t, "Tunai", receipt.PaymentLabel)
	assert.Equal(t, "Toko Berkah", receipt.StoreName)
	assert.Equal(t, "Siti", receipt.Cashier)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "A", receipt.Items[0].Name)

	var sales, items int64
	e.db.Model(&model.Sale{}).Count(&sales)
	e.db.Model(&model.SaleItem{}).Where("sale_id = ?", receipt.SaleID).Count(&items)
	assert.Equal(t, int64(1), sales)
	assert.Equal(t, int64(2), items)
	assert.Equal(t, 3, e.stock(t, a.ID))
	assert.Equal(t, 0, e.stock(t, b.ID))

	c, err := e.carts.Get(ctx, e.who)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty(), "cart is cleared after a committed sale")
	assert.Len(t, e.events.events, 1)
	assert.NoError(t, testutil.GatherAndCompare(e.metrics.Registry(), strings.NewReader(`
# HELP toko_pos_checkouts_total Checkout attempts by outcome.
# TYPE toko_pos_checkouts_total counter
toko_pos_checkouts_total{outcome="committed"} 1
`), "toko_pos_checkouts_total"))
}

func TestCheckout_NonCashRecordsTotalAndNoChange(t *testing.T) {
	e := setup(t)
	e.fill(t)

	receipt, err := e.proc.Checkout(context.Background(), e.who, model.PaymentQRIS, d(0))
	require.NoError(t, err)

	var sale model.Sale
	require.NoError(t, e.db.First(&sale, "id = ?", receipt.SaleID).Error)
	assert.True(t, sale.PaymentReceived.Equal(d(45000)))
	assert.True(t, sale.ChangeAmount.IsZero())
	assert.Equal(t, model.PaymentQRIS, sale.PaymentMethod)
}

func TestCheckout_InsufficientCashKeepsCart(t *testing.T) {
	e := setup(t)
	a, _ := e.fill(t)

	_, err := e.proc.Checkout(context.Background(), e.who, model.PaymentCash, d(40000))
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	var sales int64
	e.db.Model(&model.Sale{}).Count(&sales)
	assert.Zero(t, sales)
	assert.Equal(t, 5, e.stock(t, a.ID))

	c, _ := e.carts.Get(context.Background(), e.who)
	assert.Equal(t, 2, c.Len())
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := setup(t)
	_, err := e.proc.Checkout(context.Background(), e.who, model.PaymentCash, d(1000))
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_StockSoldElsewhereFailsWholeCommit(t *testing.T) {
	e := setup(t)
	a, b := e.fill(t)
	// Another till sells the last B after it was put in this cart.
	require.NoError(t, e.db.Model(&model.Product{}).Where("id = ?", b.ID).Update("stock", 0).Error)

	_, err := e.proc.Checkout(context.Background(), e.who, model.PaymentCash, d(50000))
	assert.ErrorIs(t, err, cart.ErrStockExceeded)
	assert.Contains(t, err.Error(), "B")

	var sales, items int64
	e.db.Model(&model.Sale{}).Count(&sales)
	e.db.Model(&model.SaleItem{}).Count(&items)
	assert.Zero(t, sales)
	assert.Zero(t, items)
	assert.Equal(t, 5, e.stock(t, a.ID), "earlier decrements are rolled back")

	c, _ := e.carts.Get(context.Background(), e.who)
	assert.Equal(t, 2, c.Len(), "cart kept for the cashier to fix")
	assert.Empty(t, e.events.events)
	assert.NoError(t, testutil.GatherAndCompare(e.metrics.Registry(), strings.NewReader(`
# HELP toko_pos_stock_conflicts_total Commits rejected by the stock guard.
# TYPE toko_pos_stock_conflicts_total counter
toko_pos_stock_conflicts_total 1
`), "toko_pos_stock_conflicts_total"))
}

type slowSales struct{}

func (slowSales) Commit(ctx context.Context, _ *model.Sale) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheckout_TimeoutIsFailure(t *testing.T) {
	e := setup(t)
	e.fill(t)
	proc := NewProcessor(e.carts, slowSales{}, e.events, nil, 20*time.Millisecond, nil)

	_, err := proc.Checkout(context.Background(), e.who, model.PaymentEWallet, decimal.Zero)
	assert.ErrorIs(t, err, ErrCommitFailed)

	c, _ := e.carts.Get(context.Background(), e.who)
	assert.Equal(t, 2, c.Len())
}

func TestCheckout_ConcurrentLastUnit(t *testing.T) {
	e := setup(t)
	p := dbtest.Product(t, e.db, e.tenant.ID, "Last", 5000, 1)
	second := dbtest.User(t, e.db, "kasir2@berkah.id", model.RoleKasir, &e.tenant.ID)
	other := e.who
	other.UserID = second.ID
	ctx := context.Background()

	for _, who := range []session.Principal{e.who, other} {
		_, err := e.carts.Add(ctx, who, p.ID)
		require.NoError(t, err)
	}

	_, err1 := e.proc.Checkout(ctx, e.who, model.PaymentCash, d(5000))
	_, err2 := e.proc.Checkout(ctx, other, model.PaymentCash, d(5000))

	require.NoError(t, err1)
	assert.ErrorIs(t, err2, cart.ErrStockExceeded)
	assert.Equal(t, 0, e.stock(t, p.ID))
}

type stickyStore struct {
	*cart.MemoryStore
}

func (stickyStore) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestCheckout_StoredSaleSurvivesCartStoreFailure(t *testing.T) {
	e := setup(t)
	e.carts = cart.NewService(stickyStore{cart.NewMemoryStore(time.Hour)}, e.products, nil)
	e.proc = NewProcessor(e.carts, repository.NewSaleRepo(e.db, e.products), e.events, e.metrics, 5*time.Second, nil)
	p := dbtest.Product(t, e.db, e.tenant.ID, "Kopi", 3000, 4)
	_, err := e.carts.Add(context.Background(), e.who, p.ID)
	require.NoError(t, err)

	receipt, err := e.proc.Checkout(context.Background(), e.who, model.PaymentQRIS, decimal.Zero)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	var sales int64
	e.db.Model(&model.Sale{}).Count(&sales)
	assert.Equal(t, int64(1), sales)
	assert.Equal(t, 3, e.stock(t, p.ID))
	assert.Len(t, e.events.events, 1)
	assert.NoError(t, testutil.GatherAndCompare(e.metrics.Registry(), strings.NewReader(`
# HELP toko_pos_checkouts_total Checkout attempts by outcome.
# TYPE toko_pos_checkouts_total counter
toko_pos_checkouts_total{outcome="committed"} 1
`), "toko_pos_checkouts_total"))
}
