package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentQRIS    PaymentMethod = "qris"
	PaymentEWallet PaymentMethod = "ewallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentQRIS, PaymentEWallet:
		return true
	}
	return false
}

// Label is the receipt/report wording for a payment method.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Tunai"
	case PaymentQRIS:
		return "QRIS"
	case PaymentEWallet:
		return "E-Wallet"
	}
	return string(m)
}

// Sale is written exactly once per committed checkout and never updated.
type Sale struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Total           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentReceived decimal.Decimal `gorm:"type:numeric(14,2)" json:"payment_received"`
	ChangeAmount    decimal.Decimal `gorm:"type:numeric(14,2)" json:"change_amount"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	Items           []SaleItem      `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
