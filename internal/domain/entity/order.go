package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the header record created at checkout
type Order struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber     string             `gorm:"size:50;unique;not null" json:"order_number"`
	CustomerID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	ShippingAddress string             `gorm:"type:text;not null" json:"shipping_address"`
	PaymentMethod   enum.PaymentMethod `gorm:"default:0" json:"payment_method"`
	TaxID           string             `gorm:"size:50" json:"tax_id"`
	Note            string             `gorm:"type:text" json:"note,omitempty"`
	Total           decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"-"`
	Status          enum.OrderStatus   `gorm:"default:0;index" json:"status"`
	CreatedAt       time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines"`
}

// MarshalJSON renders money with two decimals
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	lines := o.Lines
	if lines == nil {
		lines = []OrderLine{}
	}
	return json.Marshal(&struct {
		Alias
		Total string      `json:"total"`
		Lines []OrderLine `json:"lines"`
	}{
		Alias: Alias(o),
		Total: FormatAmount(o.Total),
		Lines: lines,
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderLine is a purchased product with its price at order time
type OrderLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	CreatedAt time.Time       `json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

// MarshalJSON adds the product display fields joined by the read model
func (l OrderLine) MarshalJSON() ([]byte, error) {
	type Alias OrderLine
	view := struct {
		Alias
		UnitPrice    string  `json:"unit_price"`
		Subtotal     string  `json:"subtotal"`
		ProductName  string  `json:"product_name"`
		ProductPrice *string `json:"product_price,omitempty"`
		ProductImage *string `json:"product_image,omitempty"`
	}{
		Alias:     Alias(l),
		UnitPrice: FormatAmount(l.UnitPrice),
		Subtotal:  FormatAmount(l.Subtotal),
	}
	if l.Product != nil {
		price := FormatAmount(l.Product.Price)
		view.ProductName = l.Product.Name
		view.ProductPrice = &price
		view.ProductImage = l.Product.ImageURL
	}
	return json.Marshal(view)
}

// BeforeCreate generates a UUID before creating a new order line
func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}
