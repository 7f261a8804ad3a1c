package session

import (
	"errors"

	"toko-kelontong-pos/internal/model"

	"github.com/google/uuid"
)

var ErrNoTenant = errors.New("account is not attached to a store")

// Principal is the caller as resolved once per request. It is passed by value
// and never re-fetched downstream.
type Principal struct {
	UserID       uuid.UUID
	Email        string
	Name         string
	Role         model.Role
	TenantID     *uuid.UUID
	TenantName   string
	TenantStatus model.TenantStatus
	TokenVersion string
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == model.RoleSuperAdmin
}

// Tenant returns the tenant every read and write of this caller is scoped to.
func (p Principal) Tenant() (uuid.UUID, error) {
	if p.TenantID == nil {
		return uuid.Nil, ErrNoTenant
	}
	return *p.TenantID, nil
}

// SessionKey identifies one sign-in of one user. A new login rotates the token
// version, so it also yields a new key.
func (p Principal) SessionKey() string {
	return p.UserID.String() + ":" + p.TokenVersion
}
