package service

import (
	"context"
	"testing"

	"toko-kelontong-pos/internal/dbtest"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTenantConsole(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	svc := NewTenantService(repository.NewTenantRepo(db), zap.NewNop())
	admin := dbtest.User(t, db, "admin@toko.id", model.RoleSuperAdmin, nil)

	created, err := svc.Create(ctx, &TenantRequest{Name: "  Toko Maju "}, principal(admin, nil))
	require.NoError(t, err)
	assert.Equal(t, "Toko Maju", created.Name)
	assert.Equal(t, model.TenantActive, created.Status)

	_, err = svc.Create(ctx, &TenantRequest{Name: "   "}, principal(admin, nil))
	assert.ErrorIs(t, err, ErrValidation)

	renamed, err := svc.Update(ctx, created.ID, &TenantRequest{Name: "Toko Maju Jaya"})
	require.NoError(t, err)
	assert.Equal(t, "Toko Maju Jaya", renamed.Name)

	off, err := svc.SetStatus(ctx, created.ID, model.TenantInactive)
	require.NoError(t, err)
	assert.Equal(t, model.TenantInactive, off.Status)

	_, err = svc.SetStatus(ctx, created.ID, model.TenantStatus("paused"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SetStatus(ctx, uuid.New(), model.TenantActive)
	assert.ErrorIs(t, err, ErrNotFound)

	dbtest.Tenant(t, db, "Toko Lain", model.TenantActive)
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, PlatformStats{TotalTenants: 2, ActiveTenants: 1, InactiveTenants: 1}, *stats)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestStoreSettings(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	svc := NewTenantService(repository.NewTenantRepo(db), zap.NewNop())
	tenant := dbtest.Tenant(t, db, "Toko Sri", model.TenantActive)
	owner := dbtest.User(t, db, "sri@toko.id", model.RoleOwner, &tenant.ID)

	store, err := svc.Store(ctx, principal(owner, tenant))
	require.NoError(t, err)
	assert.Equal(t, "Toko Sri", store.Name)

	updated, err := svc.UpdateStore(ctx, principal(owner, tenant), &TenantRequest{Name: "Toko Sri Rejeki"})
	require.NoError(t, err)
	assert.Equal(t, "Toko Sri Rejeki", updated.Name)

	_, err = svc.Store(ctx, session.Principal{UserID: uuid.New(), Role: model.RoleOwner})
	assert.ErrorIs(t, err, session.ErrNoTenant)
}
