package service

import (
	"context"
	"testing"

	"toko-kelontong-pos/internal/dbtest"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type storeEnv struct {
	db        *gorm.DB
	tenant    *model.Tenant
	other     *model.Tenant
	owner     session.Principal
	stranger  session.Principal
	events    *recorder
	inventory InventoryService
	suppliers SupplierService
	users     UserService
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()
	db := dbtest.Open(t)
	tenant := dbtest.Tenant(t, db, "Toko Makmur", model.TenantActive)
	other := dbtest.Tenant(t, db, "Toko Sebelah", model.TenantActive)
	owner := dbtest.User(t, db, "owner@makmur.id", model.RoleOwner, &tenant.ID)
	stranger := dbtest.User(t, db, "owner@sebelah.id", model.RoleOwner, &other.ID)

	products := repository.NewProductRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	events := &recorder{}
	return &storeEnv{
		db:        db,
		tenant:    tenant,
		other:     other,
		owner:     principal(owner, tenant),
		stranger:  principal(stranger, other),
		events:    events,
		inventory: NewInventoryService(products, repository.NewPurchaseRepo(db, products), supplierRepo, events, zap.NewNop()),
		suppliers: NewSupplierService(supplierRepo),
		users:     NewUserService(repository.NewUserRepo(db), zap.NewNop()),
	}
}

func TestProducts_CRUDIsTenantScoped(t *testing.T) {
	e := newStoreEnv(t)
	ctx := context.Background()

	p, err := e.inventory.CreateProduct(ctx, e.owner, &model.ProductInput{
		Name: "  Indomie Goreng ", SellPrice: decimal.NewFromInt(3500), PurchasePrice: decimal.NewFromInt(3000), Stock: 40, MinStock: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Indomie Goreng", p.Name)
	assert.Equal(t, e.tenant.ID, p.TenantID)
	assert.Equal(t, 1, e.events.count(e.tenant.ID))

	_, err = e.inventory.GetProduct(ctx, e.stranger, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.inventory.UpdateProduct(ctx, e.stranger, p.ID, &model.ProductInput{Name: "Hijacked"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, e.inventory.DeleteProduct(ctx, e.stranger, p.ID), ErrNotFound)
	assert.Zero(t, e.events.count(e.other.ID))

	updated, err := e.inventory.UpdateProduct(ctx, e.owner, p.ID, &model.ProductInput{
		Name: "Indomie Goreng", SellPrice: decimal.NewFromInt(3700), PurchasePrice: decimal.NewFromInt(3000), Stock: 5, MinStock: 10,
	})
	require.NoError(t, err)
	assert.True(t, updated.SellPrice.Equal(decimal.NewFromInt(3700)))
	assert.Equal(t, 5, updated.Stock)

	low, err := e.inventory.LowStock(ctx, e.owner, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)

	mine, err := e.inventory.ListProducts(ctx, e.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := e.inventory.ListProducts(ctx, e.stranger)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	require.NoError(t, e.inventory.DeleteProduct(ctx, e.owner, p.ID))
	_, err = e.inventory.GetProduct(ctx, e.owner, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProducts_Validation(t *testing.T) {
	e := newStoreEnv(t)
	ctx := context.Background()

	_, err := e.inventory.CreateProduct(ctx, e.owner, &model.ProductInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.inventory.CreateProduct(ctx, e.owner, &model.ProductInput{Name: "Gula", SellPrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.inventory.CreateProduct(ctx, e.owner, &model.ProductInput{Name: "Gula", Stock: -3})
	assert.ErrorIs(t, err, ErrValidation)

	noTenant := session.Principal{UserID: uuid.New(), Role: model.RoleOwner}
	_, err = e.inventory.ListProducts(ctx, noTenant)
	assert.ErrorIs(t, err, session.ErrNoTenant)
}

func TestAvailableProducts_HidesEmptyStock(t *testing.T) {
	e := newStoreEnv(t)
	ctx := context.Background()
	dbtest.Product(t, e.db, e.tenant.ID, "Kopi Kapal Api", 1500, 12)
	dbtest.Product(t, e.db, e.tenant.ID, "Teh Pucuk", 4000, 0)
	dbtest.Product(t, e.db, e.other.ID, "Kopi Luwak", 50000, 3)

	got, err := e.inventory.AvailableProducts(ctx, e.owner, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kopi Kapal Api", got[0].Name)

	got, err = e.inventory.AvailableProducts(ctx, e.owner, "KOPI")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordPurchase(t *testing.T) {
	e := newStoreEnv(t)
	ctx := context.Background()
	beras := dbtest.Product(t, e.db, e.tenant.ID, "Beras 5kg", 70000, 3)
	minyak := dbtest.Product(t, e.db, e.tenant.ID, "Minyak 1L", 18000, 0)
	sup, err := e.suppliers.Create(ctx, e.owner, &SupplierRequest{Name: "CV Sumber Rejeki"})
	require.NoError(t, err)

	purchase, err := e.inventory.RecordPurchase(ctx, e.owner, &PurchaseRequest{
		SupplierID: &sup.ID,
		Items: []PurchaseItemRequest{
			{ProductID: beras.ID, Quantity: 10, Price: decimal.NewFromInt(60000)},
			{ProductID: minyak.ID, Quantity: 24, Price: decimal.NewFromInt(15000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentUnpaid, purchase.PaymentStatus)
	assert.True(t, purchase.Total.Equal(decimal.NewFromInt(960000)), purchase.Total.String())

	var reloaded model.Product
	require.NoError(t, e.db.First(&reloaded, "id = ?", beras.ID).Error)
	assert.Equal(t, 13, reloaded.Stock)
	require.NoError(t, e.db.First(&reloaded, "id = ?", minyak.ID).Error)
	assert.Equal(t, 24, reloaded.Stock)

	list, err := e.inventory.ListPurchases(ctx, e.owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)
}

func TestRecordPurchase_Rejections(t *testing.T) {
	e := newStoreEnv(t)
	ctx := context.Background()
	mine := dbtest.Product(t, e.db, e.tenant.ID, "Sabun", 5000, 4)
	theirs := dbtest.Product(t, e.db, e.other.ID, "Sampo", 12000, 4)
	foreignSupplier, err := e.suppliers.Create(ctx, e.stranger, &SupplierRequest{Name: "PT Lain"})
	require.NoError(t, err)

	_, err = e.inventory.RecordPurchase(ctx, e.owner, &PurchaseRequest{
		SupplierID: &foreignSupplier.ID,
		Items:      []PurchaseItemRequest{{ProductID: mine.ID, Quantity: 1, Price: decimal.NewFromInt(4000)}},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.inventory.RecordPurchase(ctx, e.owner, &PurchaseRequest{
		Items: []PurchaseItemRequest{
			{ProductID: mine.ID, Quantity: 5, Price: decimal.NewFromInt(4000)},
			{ProductID: theirs.ID, Quantity: 5, Price: decimal.NewFromInt(9000)},
		},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.inventory.RecordPurchase(ctx, e.owner, &PurchaseRequest{
		PaymentStatus: "kredit",
		Items:         []PurchaseItemRequest{{ProductID: mine.ID, Quantity: 1, Price: decimal.NewFromInt(4000)}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.inventory.RecordPurchase(ctx, e.owner, &PurchaseRequest{
		Items: []PurchaseItemRequest{{ProductID: mine.ID, Quantity: 0, Price: decimal.NewFromInt(4000)}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	var reloaded model.Product
	require.NoError(t, e.db.First(&reloaded, "id = ?", mine.ID).Error)
	assert.Equal(t, 4, reloaded.Stock, "rejected purchases must not move stock")
	var count int64
	e.db.Model(&model.Purchase{}).Count(&count)
	assert.Zero(t, count)
}

func TestSuppliers(t *testing.T) {
	e := newStoreEnv(t)
	ctx := context.Background()

	_, err := e.suppliers.Create(ctx, e.owner, &SupplierRequest{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	phone := "0812"
	sup, err := e.suppliers.Create(ctx, e.owner, &SupplierRequest{Name: "Agen Gas", Phone: &phone})
	require.NoError(t, err)

	_, err = e.suppliers.Update(ctx, e.stranger, sup.ID, &SupplierRequest{Name: "Stolen"})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := e.suppliers.Update(ctx, e.owner, sup.ID, &SupplierRequest{Name: "Agen Gas Elpiji"})
	require.NoError(t, err)
	assert.Equal(t, "Agen Gas Elpiji", updated.Name)
	assert.Nil(t, updated.Phone)

	assert.ErrorIs(t, e.suppliers.Delete(ctx, e.stranger, sup.ID), ErrNotFound)
	require.NoError(t, e.suppliers.Delete(ctx, e.owner, sup.ID))
	list, err := e.suppliers.List(ctx, e.owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCashiers(t *testing.T) {
	e := newStoreEnv(t)
	ctx := context.Background()

	kasir, err := e.users.CreateCashier(ctx, e.owner, &CreateCashierRequest{
		Email: "Siti@Makmur.id", Password: "kasir123", FullName: "Siti", Phone: "0813",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleKasir, kasir.Role)
	assert.Equal(t, "siti@makmur.id", kasir.Email)
	require.NotNil(t, kasir.TenantID)
	assert.Equal(t, e.tenant.ID, *kasir.TenantID)

	_, err = e.users.CreateCashier(ctx, e.owner, &CreateCashierRequest{Email: "siti@makmur.id", Password: "kasir123", FullName: "Siti"})
	assert.ErrorIs(t, err, ErrEmailExists)
	_, err = e.users.CreateCashier(ctx, e.owner, &CreateCashierRequest{Email: "budi@makmur.id", Password: "123", FullName: "Budi"})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := e.users.ListCashiers(ctx, e.owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	other, err := e.users.ListCashiers(ctx, e.stranger)
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.ErrorIs(t, e.users.DeleteCashier(ctx, e.stranger, kasir.ID), ErrNotFound)
	assert.ErrorIs(t, e.users.DeleteCashier(ctx, e.owner, e.owner.UserID), ErrForbidden)
	require.NoError(t, e.users.DeleteCashier(ctx, e.owner, kasir.ID))

	list, err = e.users.ListCashiers(ctx, e.owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateProfile(t *testing.T) {
	e := newStoreEnv(t)
	resp, err := e.users.UpdateProfile(context.Background(), e.owner, &UpdateProfileRequest{FullName: "Pak Haji", Address: "Jl. Melati 4"})
	require.NoError(t, err)
	assert.Equal(t, "Pak Haji", resp.FullName)
	assert.Equal(t, "Jl. Melati 4", resp.Address)
}

func TestEnsureSuperAdminAndResetPassword(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepo(db)

	created, err := EnsureSuperAdmin(ctx, users, "Admin@Toko.id", "admin123")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = EnsureSuperAdmin(ctx, users, "admin@toko.id", "other")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := users.FindByEmail(ctx, "admin@toko.id")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, admin.Role)
	assert.Nil(t, admin.TenantID)
	assert.True(t, admin.CheckPassword("admin123"))

	assert.ErrorIs(t, ResetPassword(ctx, users, "admin@toko.id", "123"), ErrValidation)
	assert.ErrorIs(t, ResetPassword(ctx, users, "ghost@toko.id", "newpass1"), ErrUserNotFound)
	require.NoError(t, ResetPassword(ctx, users, "admin@toko.id", "newpass1"))

	admin, err = users.FindByEmail(ctx, "admin@toko.id")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("newpass1"))
	assert.NotEqual(t, "", admin.TokenVersion)
}
