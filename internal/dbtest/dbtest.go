// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"toko-kelontong-pos/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated SQLite database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Tenant inserts a tenant with the given status.
func Tenant(t *testing.T, db *gorm.DB, name string, status model.TenantStatus) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Name: name, Status: status}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

// User inserts a user with password "secret123".
func User(t *testing.T, db *gorm.DB, email string, role model.Role, tenantID *uuid.UUID) *model.User {
	t.Helper()
	u := &model.User{Email: email, FullName: email, Role: role, TenantID: tenantID, IsActive: true, TokenVersion: "v1"}
	if err := u.SetPassword("secret123"); err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Product inserts a product priced in whole rupiah.
func Product(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, price int64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		TenantID:      tenantID,
		Name:          name,
		PurchasePrice: decimal.NewFromInt(price * 8 / 10),
		SellPrice:     decimal.NewFromInt(price),
		Stock:         stock,
		MinStock:      2,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
