package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"
	"toko-kelontong-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InventoryService interface {
	ListProducts(ctx context.Context, who session.Principal) ([]model.Product, error)
	AvailableProducts(ctx context.Context, who session.Principal, query string) ([]model.Product, error)
	GetProduct(ctx context.Context, who session.Principal, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, who session.Principal, in *model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, who session.Principal, id uuid.UUID, in *model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, who session.Principal, id uuid.UUID) error
	LowStock(ctx context.Context, who session.Principal, limit int) ([]model.Product, error)

	RecordPurchase(ctx context.Context, who session.Principal, req *PurchaseRequest) (*model.Purchase, error)
	ListPurchases(ctx context.Context, who session.Principal) ([]model.Purchase, error)
}

type PurchaseItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"money_gte0"`
}

type PurchaseRequest struct {
	SupplierID    *uuid.UUID            `json:"supplier_id"`
	PaymentStatus model.PaymentStatus   `json:"payment_status"`
	Notes         *string               `json:"notes"`
	Items         []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	events       EventPublisher
	log          *zap.Logger
}

func NewInventoryService(pRepo repository.ProductRepository, purRepo repository.PurchaseRepository, sRepo repository.SupplierRepository, events EventPublisher, log *zap.Logger) InventoryService {
	return &inventoryService{
		productRepo:  pRepo,
		purchaseRepo: purRepo,
		supplierRepo: sRepo,
		events:       events,
		log:          log,
	}
}

func (s *inventoryService) ListProducts(ctx context.Context, who session.Principal) ([]model.Product, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	return s.productRepo.FindByTenant(ctx, tenantID)
}

// AvailableProducts is the POS catalog: only items with stock left.
func (s *inventoryService) AvailableProducts(ctx context.Context, who session.Principal, query string) ([]model.Product, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	return s.productRepo.ListAvailable(ctx, tenantID, query)
}

func (s *inventoryService) GetProduct(ctx context.Context, who session.Principal, id uuid.UUID) (*model.Product, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(ctx, tenantID, id)
	return p, notFound(err)
}

func (s *inventoryService) CreateProduct(ctx context.Context, who session.Principal, in *model.ProductInput) (*model.Product, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	p := &model.Product{TenantID: tenantID}
	applyProductInput(p, in)
	p.CreatedBy = who.UserID.String()
	p.UpdatedBy = who.UserID.String()
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.broadcast(who, ws.ActionProductCreated, []ws.StockChange{{ProductID: p.ID, Name: p.Name, Delta: p.Stock}},
		fmt.Sprintf("%s created product '%s'", who.Name, p.Name))
	return p, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, who session.Principal, id uuid.UUID, in *model.ProductInput) (*model.Product, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	p, err := s.productRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err)
	}
	delta := in.Stock - p.Stock
	applyProductInput(p, in)
	p.UpdatedBy = who.UserID.String()
	if err := s.productRepo.Update(ctx, p, delta); err != nil {
		return nil, err
	}
	if p, err = s.productRepo.FindByID(ctx, tenantID, id); err != nil {
		return nil, notFound(err)
	}

	s.broadcast(who, ws.ActionProductUpdated, []ws.StockChange{{ProductID: p.ID, Name: p.Name, Delta: delta}},
		fmt.Sprintf("%s updated product '%s'", who.Name, p.Name))
	return p, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, who session.Principal, id uuid.UUID) error {
	tenantID, err := who.Tenant()
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, tenantID, id); err != nil {
		return notFound(err)
	}
	s.broadcast(who, ws.ActionProductDeleted, []ws.StockChange{{ProductID: id}}, "")
	return nil
}

func (s *inventoryService) LowStock(ctx context.Context, who session.Principal, limit int) ([]model.Product, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	return s.productRepo.FindLowStock(ctx, tenantID, limit)
}

// RecordPurchase stores goods received and adds them to stock in one
// transaction. Prices and totals are computed here, never taken from the client.
func (s *inventoryService) RecordPurchase(ctx context.Context, who session.Principal, req *PurchaseRequest) (*model.Purchase, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = model.PaymentUnpaid
	}
	if !req.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, req.PaymentStatus)
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.SupplierID != nil {
		if _, err := s.supplierRepo.FindByID(ctx, tenantID, *req.SupplierID); err != nil {
			return nil, notFound(err)
		}
	}

	purchase := &model.Purchase{
		TenantID:      tenantID,
		SupplierID:    req.SupplierID,
		PaymentStatus: req.PaymentStatus,
		Notes:         req.Notes,
		Total:         decimal.Zero,
	}
	purchase.CreatedBy = who.UserID.String()
	for _, it := range req.Items {
		subtotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		purchase.Items = append(purchase.Items, model.PurchaseItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  subtotal,
		})
		purchase.Total = purchase.Total.Add(subtotal)
	}

	if err := s.purchaseRepo.Record(ctx, purchase); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: purchase references a product outside this store", ErrNotFound)
		}
		return nil, err
	}

	changes := make([]ws.StockChange, 0, len(purchase.Items))
	for _, it := range purchase.Items {
		changes = append(changes, ws.StockChange{ProductID: it.ProductID, Delta: it.Quantity})
	}
	s.broadcast(who, ws.ActionPurchaseRecorded, changes, fmt.Sprintf("%s recorded a purchase", who.Name))
	s.log.Info("purchase recorded",
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("total", purchase.Total.String()))
	return purchase, nil
}

func (s *inventoryService) ListPurchases(ctx context.Context, who session.Principal) ([]model.Purchase, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	return s.purchaseRepo.FindByTenant(ctx, tenantID)
}

func (s *inventoryService) broadcast(who session.Principal, action string, changes []ws.StockChange, msg string) {
	if s.events == nil || who.TenantID == nil {
		return
	}
	s.events.Publish(*who.TenantID, ws.NewStockUpdate(action, who.UserID, changes, msg))
}

func applyProductInput(p *model.Product, in *model.ProductInput) {
	p.Name = in.Name
	p.Barcode = in.Barcode
	p.PurchasePrice = in.PurchasePrice
	p.SellPrice = in.SellPrice
	p.Stock = in.Stock
	p.MinStock = in.MinStock
	p.PhotoURL = in.PhotoURL
}
