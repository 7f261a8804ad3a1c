package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"toko-kelontong-pos/internal/cart"
	"toko-kelontong-pos/internal/checkout"
	"toko-kelontong-pos/internal/dbtest"
	"toko-kelontong-pos/internal/metrics"
	"toko-kelontong-pos/internal/middleware"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/report"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/service"
	"toko-kelontong-pos/internal/session"
	"toko-kelontong-pos/internal/ws"
	"toko-kelontong-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type server struct {
	db  *gorm.DB
	app *fiber.App
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := dbtest.Open(t)
	log := zap.NewNop()
	m := metrics.New()
	hub := ws.NewHub(log)
	tokens := jwt.NewManager("handler-secret", time.Hour)

	userRepo := repository.NewUserRepo(db)
	tenantRepo := repository.NewTenantRepo(db)
	productRepo := repository.NewProductRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db, productRepo)
	saleRepo := repository.NewSaleRepo(db, productRepo)

	resolver := session.NewResolver(tokens, userRepo, tenantRepo, session.Options{Attempts: 1}, log)
	carts := cart.NewService(cart.NewMemoryStore(time.Hour), productRepo, log)
	processor := checkout.NewProcessor(carts, saleRepo, hub, m, 5*time.Second, log)
	userService := service.NewUserService(userRepo, log)

	h := Handlers{
		Auth:      NewAuthHandler(service.NewAuthService(db, userRepo, tenantRepo, tokens, resolver, hub, log), userService, log),
		Tenant:    NewTenantHandler(service.NewTenantService(tenantRepo, log), log),
		Inventory: NewInventoryHandler(service.NewInventoryService(productRepo, purchaseRepo, supplierRepo, hub, log), log),
		Supplier:  NewSupplierHandler(service.NewSupplierService(supplierRepo), log),
		User:      NewUserHandler(userService, log),
		Dashboard: NewDashboardHandler(service.NewDashboardService(saleRepo, purchaseRepo, productRepo), log),
		POS:       NewPOSHandler(carts, processor, service.NewSaleService(saleRepo, tenantRepo), log),
		Report:    NewReportHandler(report.NewService(saleRepo, purchaseRepo, log), log),
	}

	app := fiber.New()
	Register(app, h, middleware.RequireAuth(resolver, m))
	return &server{db: db, app: app}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (s *server) signup(t *testing.T, email string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", fiber.Map{
		"email": email, "password": "rahasia1", "full_name": "Bu Sri", "store_name": "Toko Sri",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var out service.LoginResponse
	decode(t, resp, &out)
	assert.Equal(t, session.OwnerDashboard, out.Redirect)
	return out.Token
}

func TestSellFlow(t *testing.T) {
	s := newServer(t)
	token := s.signup(t, "sri@toko.id")

	resp := s.do(t, http.MethodPost, "/api/v1/products", token, fiber.Map{
		"name": "Gula 1kg", "purchase_price": 12000, "sell_price": 15000, "stock": 5, "min_stock": 1,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		Data model.Product `json:"data"`
	}
	decode(t, resp, &created)
	productID := created.Data.ID

	resp = s.do(t, http.MethodPost, "/api/v1/cart/items", token, fiber.Map{"product_id": productID})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPatch, "/api/v1/cart/items/"+productID.String(), token, fiber.Map{"delta": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/v1/checkout", token, fiber.Map{"payment_method": "cash", "payment_received": 20000})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/v1/checkout", token, fiber.Map{"payment_method": "cash", "payment_received": 50000})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var done struct {
		Receipt checkout.Receipt `json:"receipt"`
	}
	decode(t, resp, &done)
	assert.True(t, done.Receipt.Total.Equal(decimal.NewFromInt(30000)))
	assert.True(t, done.Receipt.Change.Equal(decimal.NewFromInt(20000)))

	var stock model.Product
	require.NoError(t, s.db.First(&stock, "id = ?", productID).Error)
	assert.Equal(t, 3, stock.Stock)

	resp = s.do(t, http.MethodPost, "/api/v1/checkout", token, fiber.Map{"payment_method": "cash", "payment_received": 1000})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "cart is emptied by a committed sale")
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/v1/sales/"+done.Receipt.SaleID.String()+"/receipt", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var again checkout.Receipt
	decode(t, resp, &again)
	assert.Equal(t, "Toko Sri", again.StoreName)
	require.Len(t, again.Items, 1)
	assert.Equal(t, 2, again.Items[0].Quantity)

	resp = s.do(t, http.MethodGet, "/api/v1/reports/export?period=today", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, report.ContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment; filename=")
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/v1/reports?period=decade", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	ownerToken := s.signup(t, "sri@toko.id")

	resp := s.do(t, http.MethodPost, "/api/v1/cashiers", ownerToken, fiber.Map{
		"email": "kasir@toko.id", "password": "kasir123", "full_name": "Dewi",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "kasir@toko.id", "password": "kasir123"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var login service.LoginResponse
	decode(t, resp, &login)
	assert.Equal(t, session.KasirDashboard, login.Redirect)

	resp = s.do(t, http.MethodGet, "/api/v1/products", login.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	var denied map[string]interface{}
	decode(t, resp, &denied)
	assert.Equal(t, session.KasirDashboard, denied["redirect"])

	resp = s.do(t, http.MethodGet, "/api/v1/pos/products", login.Token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/v1/tenants", ownerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginFailure(t *testing.T) {
	s := newServer(t)
	s.signup(t, "sri@toko.id")

	resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "sri@toko.id", "password": "salah"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "/", body["redirect"])

	resp = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", fiber.Map{
		"email": "sri@toko.id", "password": "rahasia1", "full_name": "Bu Sri",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", service.ErrValidation), fiber.StatusBadRequest},
		{checkout.ErrEmptyCart, fiber.StatusBadRequest},
		{checkout.ErrInsufficientPayment, fiber.StatusUnprocessableEntity},
		{cart.ErrProductNotFound, fiber.StatusNotFound},
		{cart.ErrStockExceeded, fiber.StatusConflict},
		{&repository.StockConflictError{Requested: 3}, fiber.StatusConflict},
		{session.ErrSessionRevoked, fiber.StatusUnauthorized},
		{session.ErrNoTenant, fiber.StatusForbidden},
		{session.ErrTenantInactive, fiber.StatusForbidden},
		{checkout.ErrCommitFailed, fiber.StatusServiceUnavailable},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}
