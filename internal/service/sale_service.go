package service

import (
	"context"

	"toko-kelontong-pos/internal/checkout"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
)

type SaleService interface {
	Receipt(ctx context.Context, who session.Principal, id uuid.UUID) (*checkout.Receipt, error)
}

type saleService struct {
	sales   repository.SaleRepository
	tenants repository.TenantRepository
}

func NewSaleService(sales repository.SaleRepository, tenants repository.TenantRepository) SaleService {
	return &saleService{sales: sales, tenants: tenants}
}

// Receipt rebuilds the receipt of a committed sale. A cashier may only reprint
// their own sales; owners see every sale of the store.
func (s *saleService) Receipt(ctx context.Context, who session.Principal, id uuid.UUID) (*checkout.Receipt, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	sale, err := s.sales.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err)
	}
	if who.Role == model.RoleKasir && (sale.UserID == nil || *sale.UserID != who.UserID) {
		return nil, ErrNotFound
	}

	storeName := who.TenantName
	if storeName == "" {
		if tenant, err := s.tenants.FindByID(ctx, tenantID); err == nil {
			storeName = tenant.Name
		}
	}
	r := checkout.NewReceipt(sale, storeName, "")
	return &r, nil
}
