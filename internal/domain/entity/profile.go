package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the storefront details of an identity. Its ID is the
// identity's user id, so no id is generated here.
type Profile struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName        string    `gorm:"size:255" json:"full_name"`
	Email           string    `gorm:"size:255;index" json:"email"`
	Phone           string    `gorm:"size:50" json:"phone,omitempty"`
	ShippingAddress string    `gorm:"type:text" json:"shipping_address,omitempty"`
	TaxID           string    `gorm:"size:50" json:"tax_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}
