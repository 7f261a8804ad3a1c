package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleOwner      Role = "owner"
	RoleKasir      Role = "kasir"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOwner, RoleKasir:
		return true
	}
	return false
}

// User represents an authenticated principal. TenantID is nil only for super admins.
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Phone        string     `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Address      string     `gorm:"type:text" json:"address,omitempty"`
	Role         Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	TenantID     *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id,omitempty"`
	Tenant       *Tenant    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // rotated on sign-out
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone,omitempty"`
	Address    string     `json:"address,omitempty"`
	Role       Role       `json:"role"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	IsActive   bool       `json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Address:    u.Address,
		Role:       u.Role,
		TenantID:   u.TenantID,
		IsActive:   u.IsActive,
		LastSeenAt: u.LastSeenAt,
	}
}
