package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"toko-kelontong-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a guarded decrement finds less stock
// than requested. The caller's transaction must be rolled back.
var ErrInsufficientStock = errors.New("insufficient stock remaining")

// StockConflictError names the product whose guard failed.
type StockConflictError struct {
	ProductID uuid.UUID
	Requested int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("product %s: %d units requested: %v", e.ProductID, e.Requested, ErrInsufficientStock)
}

func (e *StockConflictError) Unwrap() error { return ErrInsufficientStock }

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error)
	ListAvailable(ctx context.Context, tenantID uuid.UUID, query string) ([]model.Product, error)
	FindLowStock(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.Product, error)
	CountBelow(ctx context.Context, tenantID uuid.UUID, threshold int) (int64, error)
	Update(ctx context.Context, product *model.Product, stockDelta int) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	DecrementStock(tx *gorm.DB, tenantID, id uuid.UUID, qty int) error
	IncrementStock(tx *gorm.DB, tenantID, id uuid.UUID, qty int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name ASC").Find(&products).Error
	return products, err
}

// ListAvailable returns the tenant's sellable catalog (stock > 0), optionally
// filtered by a case-insensitive name or barcode match.
func (r *productRepo) ListAvailable(ctx context.Context, tenantID uuid.UUID, query string) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Where("tenant_id = ? AND stock > 0", tenantID)
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(barcode) LIKE ?", like, like)
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

// FindLowStock lists products at or below their own min_stock, emptiest first.
func (r *productRepo) FindLowStock(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND stock <= min_stock", tenantID).
		Order("stock ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) CountBelow(ctx context.Context, tenantID uuid.UUID, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tenant_id = ? AND stock < ?", tenantID, threshold).
		Count(&count).Error
	return count, err
}

// Update writes the product's details but never its stock column. Stock moves
// by stockDelta through the same relative updates sales and purchases use, so
// units sold while the owner was editing are kept.
func (r *productRepo) Update(ctx context.Context, product *model.Product, stockDelta int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("stock").Save(product).Error; err != nil {
			return err
		}
		switch {
		case stockDelta > 0:
			return r.IncrementStock(tx, product.TenantID, product.ID, stockDelta)
		case stockDelta < 0:
			return r.DecrementStock(tx, product.TenantID, product.ID, -stockDelta)
		}
		return nil
	})
}

func (r *productRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ? AND tenant_id = ?", id, tenantID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock runs `stock = stock - qty WHERE stock >= qty` inside tx.
// Zero rows affected means the guard failed (or the product is not the tenant's).
func (r *productRepo) DecrementStock(tx *gorm.DB, tenantID, id uuid.UUID, qty int) error {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND tenant_id = ? AND stock >= ?", id, tenantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &StockConflictError{ProductID: id, Requested: qty}
	}
	return nil
}

func (r *productRepo) IncrementStock(tx *gorm.DB, tenantID, id uuid.UUID, qty int) error {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
