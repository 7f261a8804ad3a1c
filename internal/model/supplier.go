package model

import "github.com/google/uuid"

type Supplier struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Contact  *string   `gorm:"type:varchar(255)" json:"contact,omitempty"`
	Phone    *string   `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Address  *string   `gorm:"type:text" json:"address,omitempty"`
}
