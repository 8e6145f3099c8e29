package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold is the stock level under which a product counts as low
const LowStockThreshold = 10

// Product represents a catalog product
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Code        string          `gorm:"size:100;unique;not null" json:"code"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	Stock       int             `gorm:"default:0" json:"stock"`
	ImageURL    *string         `gorm:"size:255" json:"image_url,omitempty"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// MarshalJSON renders the price with two decimals
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Price string `json:"price"`
	}{
		Alias: Alias(p),
		Price: FormatAmount(p.Price),
	})
}

// Snapshot captures what the cart needs to know about the product right now
func (p *Product) Snapshot() ProductSnapshot {
	snap := ProductSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
	if p.ImageURL != nil {
		snap.ImageRef = *p.ImageURL
	}
	return snap
}

// IsLowStock reports whether stock is under LowStockThreshold
func (p *Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
