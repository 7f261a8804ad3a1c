package service

import (
	"context"
	"strings"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
)

type SupplierService interface {
	List(ctx context.Context, who session.Principal) ([]model.Supplier, error)
	Create(ctx context.Context, who session.Principal, req *SupplierRequest) (*model.Supplier, error)
	Update(ctx context.Context, who session.Principal, id uuid.UUID, req *SupplierRequest) (*model.Supplier, error)
	Delete(ctx context.Context, who session.Principal, id uuid.UUID) error
}

type SupplierRequest struct {
	Name    string  `json:"name" validate:"required"`
	Contact *string `json:"contact"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) List(ctx context.Context, who session.Principal) ([]model.Supplier, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	return s.repo.FindByTenant(ctx, tenantID)
}

func (s *supplierService) Create(ctx context.Context, who session.Principal, req *SupplierRequest) (*model.Supplier, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	sup := &model.Supplier{TenantID: tenantID, Name: req.Name, Contact: req.Contact, Phone: req.Phone, Address: req.Address}
	sup.CreatedBy = who.UserID.String()
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *supplierService) Update(ctx context.Context, who session.Principal, id uuid.UUID, req *SupplierRequest) (*model.Supplier, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	sup, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err)
	}
	sup.Name, sup.Contact, sup.Phone, sup.Address = req.Name, req.Contact, req.Phone, req.Address
	sup.UpdatedBy = who.UserID.String()
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *supplierService) Delete(ctx context.Context, who session.Principal, id uuid.UUID) error {
	tenantID, err := who.Tenant()
	if err != nil {
		return err
	}
	return notFound(s.repo.Delete(ctx, tenantID, id))
}
