package service

import (
	"context"
	"fmt"
	"strings"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantService covers the super admin console and each owner's store settings.
type TenantService interface {
	List(ctx context.Context) ([]model.TenantSummary, error)
	Create(ctx context.Context, req *TenantRequest, creator session.Principal) (*model.Tenant, error)
	Update(ctx context.Context, id uuid.UUID, req *TenantRequest) (*model.Tenant, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.TenantStatus) (*model.Tenant, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*PlatformStats, error)

	Store(ctx context.Context, who session.Principal) (*model.Tenant, error)
	UpdateStore(ctx context.Context, who session.Principal, req *TenantRequest) (*model.Tenant, error)
}

type TenantRequest struct {
	Name      string  `json:"name" validate:"required"`
	Subdomain *string `json:"subdomain"`
}

type PlatformStats struct {
	TotalTenants    int64 `json:"total_tenants"`
	ActiveTenants   int64 `json:"active_tenants"`
	InactiveTenants int64 `json:"inactive_tenants"`
}

type tenantService struct {
	tenants repository.TenantRepository
	log     *zap.Logger
}

func NewTenantService(tenants repository.TenantRepository, log *zap.Logger) TenantService {
	return &tenantService{tenants: tenants, log: log}
}

func (s *tenantService) List(ctx context.Context) ([]model.TenantSummary, error) {
	return s.tenants.Summaries(ctx)
}

// Create registers a store without an owner; the owner is attached when they
// sign up.
func (s *tenantService) Create(ctx context.Context, req *TenantRequest, creator session.Principal) (*model.Tenant, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	tenant := &model.Tenant{Name: req.Name, Subdomain: req.Subdomain, Status: model.TenantActive}
	tenant.CreatedBy = creator.UserID.String()
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	s.log.Info("tenant created", zap.String("tenant_id", tenant.ID.String()), zap.String("name", tenant.Name))
	return tenant, nil
}

func (s *tenantService) Update(ctx context.Context, id uuid.UUID, req *TenantRequest) (*model.Tenant, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.tenants.UpdateDetails(ctx, id, req.Name, req.Subdomain); err != nil {
		return nil, notFound(err)
	}
	tenant, err := s.tenants.FindByID(ctx, id)
	return tenant, notFound(err)
}

// SetStatus takes effect on the tenant's users at their next request, when
// the session gate signs them out.
func (s *tenantService) SetStatus(ctx context.Context, id uuid.UUID, status model.TenantStatus) (*model.Tenant, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be active or inactive", ErrValidation)
	}
	if err := s.tenants.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFound(err)
	}
	s.log.Info("tenant status changed", zap.String("tenant_id", id.String()), zap.String("status", string(status)))
	tenant, err := s.tenants.FindByID(ctx, id)
	return tenant, notFound(err)
}

func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tenants.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.log.Info("tenant deleted", zap.String("tenant_id", id.String()))
	return nil
}

func (s *tenantService) Stats(ctx context.Context) (*PlatformStats, error) {
	counts, err := s.tenants.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &PlatformStats{
		TotalTenants:    counts[model.TenantActive] + counts[model.TenantInactive],
		ActiveTenants:   counts[model.TenantActive],
		InactiveTenants: counts[model.TenantInactive],
	}, nil
}

func (s *tenantService) Store(ctx context.Context, who session.Principal) (*model.Tenant, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	return tenant, notFound(err)
}

func (s *tenantService) UpdateStore(ctx context.Context, who session.Principal, req *TenantRequest) (*model.Tenant, error) {
	tenantID, err := who.Tenant()
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, tenantID, req)
}
