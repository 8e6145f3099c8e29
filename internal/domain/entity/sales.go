package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesRecord is the accounting ledger entry for a checkout. It is written
// separately from the order and has its own identity.
type SalesRecord struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	ReferenceNo   string             `gorm:"size:50;unique;not null" json:"reference_no"`
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	CashierID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"cashier_id"`
	Total         decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"-"`
	PaymentMethod enum.PaymentMethod `gorm:"default:0" json:"payment_method"`
	TaxID         *string            `gorm:"size:50" json:"tax_id,omitempty"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`

	Lines []SalesLine `gorm:"foreignKey:SalesRecordID" json:"lines,omitempty"`
}

// SalesRecordTaxIDColumn is the optional column older schemas may lack
const SalesRecordTaxIDColumn = "tax_id"

// StripOptional clears the optional column and reports whether it was set
func (s *SalesRecord) StripOptional(column string) bool {
	switch column {
	case SalesRecordTaxIDColumn:
		if s.TaxID == nil {
			return false
		}
		s.TaxID = nil
		return true
	}
	return false
}

func (s SalesRecord) MarshalJSON() ([]byte, error) {
	type Alias SalesRecord
	return json.Marshal(&struct {
		Alias
		Total string `json:"total"`
	}{
		Alias: Alias(s),
		Total: FormatAmount(s.Total),
	})
}

// BeforeCreate generates a UUID before creating a new sales record
func (s *SalesRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SalesRecord model
func (SalesRecord) TableName() string {
	return "sales_records"
}

// SalesLine is one product line of a sales record
type SalesLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SalesRecordID uuid.UUID       `gorm:"type:uuid;not null;index" json:"sales_record_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (l SalesLine) MarshalJSON() ([]byte, error) {
	type Alias SalesLine
	return json.Marshal(&struct {
		Alias
		UnitPrice string `json:"unit_price"`
		Subtotal  string `json:"subtotal"`
	}{
		Alias:     Alias(l),
		UnitPrice: FormatAmount(l.UnitPrice),
		Subtotal:  FormatAmount(l.Subtotal),
	})
}

// BeforeCreate generates a UUID before creating a new sales line
func (l *SalesLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SalesLine model
func (SalesLine) TableName() string {
	return "sales_lines"
}
