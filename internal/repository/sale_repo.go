package repository

import (
	"context"
	"time"

	"toko-kelontong-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	Commit(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
	FindByRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Sale, error)
	FindByCashierSince(ctx context.Context, tenantID, userID uuid.UUID, since time.Time) ([]model.Sale, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.Sale, error)
	SumTotal(ctx context.Context, tenantID uuid.UUID, until time.Time) (decimal.Decimal, error)
}

type saleRepo struct {
	db       *gorm.DB
	products ProductRepository
}

func NewSaleRepo(db *gorm.DB, products ProductRepository) SaleRepository {
	return &saleRepo{db: db, products: products}
}

// Commit writes the sale header, its items and every stock decrement as one
// transaction. A failed stock guard rolls back the whole sale.
func (r *saleRepo) Commit(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(sale).Error; err != nil {
			return err
		}

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
		}
		if len(sale.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&sale.Items).Error; err != nil {
				return err
			}
		}

		for _, item := range sale.Items {
			if err := r.products.DecrementStock(tx, sale.TenantID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *saleRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		First(&sale, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindByRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("tenant_id = ? AND created_at >= ? AND created_at <= ?", tenantID, start, end).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByCashierSince(ctx context.Context, tenantID, userID uuid.UUID, since time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND created_at >= ?", tenantID, userID, since).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

// SumTotal adds up the totals of every sale made up to until.
func (r *saleRepo) SumTotal(ctx context.Context, tenantID uuid.UUID, until time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("SUM(total)").
		Where("tenant_id = ? AND created_at <= ?", tenantID, until).
		Row().Scan(&total)
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
