package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "lunas"
	PaymentUnpaid  PaymentStatus = "belum_lunas"
	PaymentPartial PaymentStatus = "sebagian"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPartial:
		return true
	}
	return false
}

// Label is the report wording for a payment status.
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentPaid:
		return "Lunas"
	case PaymentUnpaid:
		return "Belum Lunas"
	default:
		return "Cicilan"
	}
}

// Purchase records stock received from a supplier. Stock is incremented in the
// same transaction that writes the purchase.
type Purchase struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SupplierID    *uuid.UUID      `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier      *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'belum_lunas'" json:"payment_status"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
}

type PurchaseItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Price      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
}

func (i *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
