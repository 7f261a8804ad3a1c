package repository

import (
	"context"

	"toko-kelontong-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	FindAll(ctx context.Context) ([]model.Tenant, error)
	Summaries(ctx context.Context) ([]model.TenantSummary, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, name string, subdomain *string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TenantStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[model.TenantStatus]int64, error)
}

type tenantRepo struct {
	db *gorm.DB
}

func NewTenantRepo(db *gorm.DB) TenantRepository {
	return &tenantRepo{db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepo) FindAll(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tenants).Error
	return tenants, err
}

// Summaries joins each tenant with its owner account and product count.
func (r *tenantRepo) Summaries(ctx context.Context) ([]model.TenantSummary, error) {
	tenants, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.TenantSummary, 0, len(tenants))
	for _, t := range tenants {
		s := model.TenantSummary{ID: t.ID, Name: t.Name, Status: t.Status}

		var owner model.User
		err := r.db.WithContext(ctx).
			Where("tenant_id = ? AND role = ?", t.ID, model.RoleOwner).
			Order("created_at ASC").
			Limit(1).Find(&owner).Error
		if err != nil {
			return nil, err
		}
		s.OwnerName = owner.FullName
		s.OwnerEmail = owner.Email

		if err := r.db.WithContext(ctx).Model(&model.Product{}).
			Where("tenant_id = ?", t.ID).Count(&s.ProductCount).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (r *tenantRepo) UpdateDetails(ctx context.Context, id uuid.UUID, name string, subdomain *string) error {
	return r.updates(ctx, id, map[string]interface{}{"name": name, "subdomain": subdomain})
}

func (r *tenantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TenantStatus) error {
	return r.updates(ctx, id, map[string]interface{}{"status": status})
}

func (r *tenantRepo) updates(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the tenant together with its users and catalog.
func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.User{}, &model.Product{}, &model.Supplier{}} {
			if err := tx.Where("tenant_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&model.Tenant{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *tenantRepo) CountByStatus(ctx context.Context) (map[model.TenantStatus]int64, error) {
	var rows []struct {
		Status model.TenantStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Tenant{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := map[model.TenantStatus]int64{model.TenantActive: 0, model.TenantInactive: 0}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
