package model

import "github.com/google/uuid"

type TenantStatus string

const (
	TenantActive   TenantStatus = "active"
	TenantInactive TenantStatus = "inactive"
)

func (s TenantStatus) Valid() bool {
	return s == TenantActive || s == TenantInactive
}

// Tenant is one store account. Every product, sale, purchase, supplier and
// non super admin user belongs to exactly one tenant.
type Tenant struct {
	BaseModel
	Name      string       `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Subdomain *string      `gorm:"type:varchar(100)" json:"subdomain,omitempty"`
	Status    TenantStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantActive
}

// TenantSummary is the super admin list row: tenant plus its owner and size.
type TenantSummary struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Status       TenantStatus `json:"status"`
	OwnerName    string       `json:"owner_name"`
	OwnerEmail   string       `json:"owner_email"`
	ProductCount int64        `json:"product_count"`
}
