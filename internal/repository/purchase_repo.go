package repository

import (
	"context"
	"time"

	"toko-kelontong-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	Record(ctx context.Context, purchase *model.Purchase) error
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Purchase, error)
	FindByRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Purchase, error)
}

type purchaseRepo struct {
	db       *gorm.DB
	products ProductRepository
}

func NewPurchaseRepo(db *gorm.DB, products ProductRepository) PurchaseRepository {
	return &purchaseRepo{db: db, products: products}
}

// Record stores the purchase and its items and adds the received quantities
// to stock, all in one transaction.
func (r *purchaseRepo) Record(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(purchase).Error; err != nil {
			return err
		}
		for i := range purchase.Items {
			purchase.Items[i].PurchaseID = purchase.ID
		}
		if len(purchase.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&purchase.Items).Error; err != nil {
				return err
			}
		}
		for _, item := range purchase.Items {
			if err := r.products.IncrementStock(tx, purchase.TenantID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *purchaseRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.WithContext(ctx).
		Preload("Supplier", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *purchaseRepo) FindByRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.WithContext(ctx).
		Preload("Supplier", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, start, end).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}
