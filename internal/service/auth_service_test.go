package service

import (
	"context"
	"testing"
	"time"

	"toko-kelontong-pos/internal/dbtest"
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/repository"
	"toko-kelontong-pos/internal/session"
	"toko-kelontong-pos/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuth(t *testing.T) (AuthService, *gorm.DB, *recorder) {
	t.Helper()
	db := dbtest.Open(t)
	users := repository.NewUserRepo(db)
	tenants := repository.NewTenantRepo(db)
	tokens := jwt.NewManager("test-secret", time.Hour)
	resolver := session.NewResolver(tokens, users, tenants, session.Options{Attempts: 1}, nil)
	events := &recorder{}
	return NewAuthService(db, users, tenants, tokens, resolver, events, zap.NewNop()), db, events
}

func TestSignup_CreatesStoreAndOwner(t *testing.T) {
	auth, db, _ := newAuth(t)
	ctx := context.Background()

	resp, err := auth.Signup(ctx, &SignupRequest{Email: " Budi@Mail.com ", Password: "rahasia", FullName: "Budi"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, session.OwnerDashboard, resp.Redirect)
	assert.Equal(t, "budi@mail.com", resp.User.Email)
	assert.Equal(t, model.RoleOwner, resp.User.Role)
	require.NotNil(t, resp.User.TenantID)

	var tenant model.Tenant
	require.NoError(t, db.First(&tenant, "id = ?", *resp.User.TenantID).Error)
	assert.Equal(t, "Toko Budi", tenant.Name)
	assert.Equal(t, model.TenantActive, tenant.Status)

	_, err = auth.Signup(ctx, &SignupRequest{Email: "budi@mail.com", Password: "rahasia", FullName: "Budi 2"})
	assert.ErrorIs(t, err, ErrEmailExists)

	var count int64
	db.Model(&model.Tenant{}).Count(&count)
	assert.EqualValues(t, 1, count, "failed signup must not leave a tenant behind")
}

func TestSignup_Validation(t *testing.T) {
	auth, _, _ := newAuth(t)
	_, err := auth.Signup(context.Background(), &SignupRequest{Email: "x@y.id", Password: "123", FullName: "X"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogin(t *testing.T) {
	auth, db, _ := newAuth(t)
	ctx := context.Background()
	active := dbtest.Tenant(t, db, "Aktif", model.TenantActive)
	dbtest.User(t, db, "kasir@aktif.id", model.RoleKasir, &active.ID)
	dbtest.User(t, db, "admin@toko.id", model.RoleSuperAdmin, nil)

	resp, err := auth.Login(ctx, "kasir@aktif.id", "secret123")
	require.NoError(t, err)
	assert.Equal(t, session.KasirDashboard, resp.Redirect)

	resp, err = auth.Login(ctx, "ADMIN@toko.id", "secret123")
	require.NoError(t, err)
	assert.Equal(t, session.SuperAdminDashboard, resp.Redirect)

	_, err = auth.Login(ctx, "kasir@aktif.id", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@aktif.id", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveTenantRejected(t *testing.T) {
	auth, db, _ := newAuth(t)
	tenant := dbtest.Tenant(t, db, "Tutup", model.TenantActive)
	dbtest.User(t, db, "owner@tutup.id", model.RoleOwner, &tenant.ID)
	require.NoError(t, db.Model(tenant).Update("status", model.TenantInactive).Error)

	_, err := auth.Login(context.Background(), "owner@tutup.id", "secret123")
	assert.ErrorIs(t, err, session.ErrTenantInactive)
}

func TestLogin_NewSessionRevokesOld(t *testing.T) {
	auth, db, _ := newAuth(t)
	ctx := context.Background()
	tenant := dbtest.Tenant(t, db, "Toko", model.TenantActive)
	dbtest.User(t, db, "owner@toko.id", model.RoleOwner, &tenant.ID)

	first, err := auth.Login(ctx, "owner@toko.id", "secret123")
	require.NoError(t, err)
	v, err := auth.ValidateToken(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, "Toko", v.TenantName)

	second, err := auth.Login(ctx, "owner@toko.id", "secret123")
	require.NoError(t, err)

	_, err = auth.ValidateToken(ctx, first.Token)
	assert.ErrorIs(t, err, session.ErrSessionRevoked)
	_, err = auth.ValidateToken(ctx, second.Token)
	assert.NoError(t, err)
}

func TestLogout_RevokesToken(t *testing.T) {
	auth, db, _ := newAuth(t)
	ctx := context.Background()
	tenant := dbtest.Tenant(t, db, "Toko", model.TenantActive)
	u := dbtest.User(t, db, "kasir@toko.id", model.RoleKasir, &tenant.ID)

	resp, err := auth.Login(ctx, "kasir@toko.id", "secret123")
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, principal(u, tenant)))

	_, err = auth.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, session.ErrAuthenticationFailure)
}

func TestHeartbeatAndChangePassword(t *testing.T) {
	auth, db, events := newAuth(t)
	ctx := context.Background()
	tenant := dbtest.Tenant(t, db, "Toko", model.TenantActive)
	u := dbtest.User(t, db, "owner@toko.id", model.RoleOwner, &tenant.ID)
	who := principal(u, tenant)

	require.NoError(t, auth.Heartbeat(ctx, who))
	assert.Equal(t, 1, events.count(tenant.ID))

	err := auth.ChangePassword(ctx, who, &ChangePasswordRequest{OldPassword: "nope", NewPassword: "baru1234"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	require.NoError(t, auth.ChangePassword(ctx, who, &ChangePasswordRequest{OldPassword: "secret123", NewPassword: "baru1234"}))

	_, err = auth.Login(ctx, "owner@toko.id", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "owner@toko.id", "baru1234")
	assert.NoError(t, err)

	me, err := auth.Me(ctx, who)
	require.NoError(t, err)
	assert.Equal(t, "owner@toko.id", me.Email)
}
