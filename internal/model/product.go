package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Barcode       *string         `gorm:"type:varchar(100);index" json:"barcode,omitempty"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"purchase_price"`
	SellPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"sell_price"`
	Stock         int             `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	MinStock      int             `gorm:"not null;default:0" json:"min_stock" validate:"gte=0"`
	PhotoURL      *string         `gorm:"type:text" json:"photo_url,omitempty"`
}

// IsLowStock reports whether the product has reached its reorder level.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// ProductInput is the writable subset of a product accepted from owners.
type ProductInput struct {
	Name          string          `json:"name" validate:"required"`
	Barcode       *string         `json:"barcode"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"money_gte0"`
	SellPrice     decimal.Decimal `json:"sell_price" validate:"money_gte0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	MinStock      int             `json:"min_stock" validate:"gte=0"`
	PhotoURL      *string         `json:"photo_url"`
}
