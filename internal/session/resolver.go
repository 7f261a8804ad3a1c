package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAuthenticationFailure = errors.New("authentication failed")
	ErrSessionRevoked        = fmt.Errorf("%w: session ended (signed in elsewhere or signed out)", ErrAuthenticationFailure)
	ErrSessionIdle           = fmt.Errorf("%w: session expired due to inactivity", ErrAuthenticationFailure)
	ErrUserInactive          = errors.New("user account is inactive")
	ErrTenantInactive        = errors.New("store account is inactive")
	ErrTenantMissing         = errors.New("store account no longer exists")
	ErrTransientLookup       = errors.New("session lookup failed, try again")
)

type Status int

const (
	Unauthenticated Status = iota
	Authenticated
	Denied
	Indeterminate
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Denied:
		return "denied"
	case Indeterminate:
		return "indeterminate"
	}
	return "unauthenticated"
}

type DenialReason string

const (
	ReasonUserInactive   DenialReason = "user_inactive"
	ReasonTenantInactive DenialReason = "tenant_inactive"
	ReasonTenantMissing  DenialReason = "tenant_missing"
)

// Resolution is the outcome of one admission check. Principal is set only when
// Status is Authenticated.
type Resolution struct {
	Status    Status
	Principal *Principal
	Reason    DenialReason
	Err       error
}

// Admitted is true only for Authenticated. Indeterminate never admits.
func (r Resolution) Admitted() bool {
	return r.Status == Authenticated && r.Principal != nil
}

// Redirect is where a rejected caller is sent. Indeterminate has no redirect;
// the caller should retry.
func (r Resolution) Redirect() string {
	switch r.Status {
	case Unauthenticated, Denied:
		return PublicLanding
	}
	return ""
}

type TokenVerifier interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error
}

type TenantStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
}

type Options struct {
	Attempts    int
	Backoff     time.Duration
	IdleTimeout time.Duration
}

// Resolver decides, per request, whether a bearer token admits its holder.
type Resolver struct {
	tokens  TokenVerifier
	users   UserStore
	tenants TenantStore
	opts    Options
	log     *zap.Logger
	now     func() time.Time
}

func NewResolver(tokens TokenVerifier, users UserStore, tenants TenantStore, opts Options, log *zap.Logger) *Resolver {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{tokens: tokens, users: users, tenants: tenants, opts: opts, log: log, now: time.Now}
}

func (r *Resolver) Resolve(ctx context.Context, token string) Resolution {
	if token == "" {
		return Resolution{Status: Unauthenticated, Err: jwt.ErrMissingToken}
	}
	claims, err := r.tokens.ValidateToken(token)
	if err != nil {
		return Resolution{Status: Unauthenticated, Err: fmt.Errorf("%w: %v", ErrAuthenticationFailure, err)}
	}

	var user *model.User
	err = r.retry(ctx, "user", func() (err error) {
		user, err = r.users.FindByID(ctx, claims.UserID)
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Resolution{Status: Unauthenticated, Err: ErrAuthenticationFailure}
	case err != nil:
		return Resolution{Status: Indeterminate, Err: err}
	}

	if user.TokenVersion != claims.TokenVersion {
		return Resolution{Status: Unauthenticated, Err: ErrSessionRevoked}
	}
	if !user.IsActive {
		return Resolution{Status: Denied, Reason: ReasonUserInactive, Err: ErrUserInactive}
	}
	if r.opts.IdleTimeout > 0 && user.LastSeenAt != nil && r.now().Sub(*user.LastSeenAt) > r.opts.IdleTimeout {
		return Resolution{Status: Unauthenticated, Err: ErrSessionIdle}
	}

	p := &Principal{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		Role:         user.Role,
		TenantID:     user.TenantID,
		TokenVersion: user.TokenVersion,
	}
	if p.IsSuperAdmin() || p.TenantID == nil {
		return Resolution{Status: Authenticated, Principal: p}
	}

	var tenant *model.Tenant
	err = r.retry(ctx, "tenant", func() (err error) {
		tenant, err = r.tenants.FindByID(ctx, *p.TenantID)
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		r.forceSignOut(ctx, user.ID)
		return Resolution{Status: Denied, Reason: ReasonTenantMissing, Err: ErrTenantMissing}
	case err != nil:
		return Resolution{Status: Indeterminate, Err: err}
	}

	if !tenant.IsActive() {
		r.forceSignOut(ctx, user.ID)
		return Resolution{Status: Denied, Reason: ReasonTenantInactive, Err: ErrTenantInactive}
	}
	p.TenantName = tenant.Name
	p.TenantStatus = tenant.Status
	return Resolution{Status: Authenticated, Principal: p}
}

// retry runs fn up to Attempts times with linear backoff. Not-found is final.
func (r *Resolver) retry(ctx context.Context, what string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
		if err = fn(); err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		r.log.Warn("session lookup failed",
			zap.String("lookup", what),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == r.opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrTransientLookup, ctx.Err())
		case <-time.After(time.Duration(attempt) * r.opts.Backoff):
		}
	}
	return fmt.Errorf("%w: %v", ErrTransientLookup, err)
}

func (r *Resolver) forceSignOut(ctx context.Context, userID uuid.UUID) {
	if err := SignOut(ctx, r.users, userID); err != nil {
		r.log.Error("forced sign-out failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// SignOut ends every session of the user by rotating the token version that
// issued tokens are checked against.
func SignOut(ctx context.Context, users UserStore, userID uuid.UUID) error {
	return users.UpdateTokenVersion(ctx, userID, uuid.NewString())
}
