package entity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// TaxRate is the fixed sales tax applied to every cart subtotal
var TaxRate = decimal.RequireFromString("0.13")

// ErrCorruptCart is returned when a serialized cart cannot be trusted
var ErrCorruptCart = errors.New("corrupt cart data")

// ProductSnapshot is what the cart knows about a product at the moment of a mutation
type ProductSnapshot struct {
	ID       uuid.UUID
	Name     string
	Price    decimal.Decimal
	ImageRef string
	Stock    int
}

// CartLine is one product's presence in the cart
type CartLine struct {
	ProductID     uuid.UUID
	Name          string
	UnitPrice     decimal.Decimal
	Quantity      int
	ImageRef      string
	StockSnapshot int
}

// Subtotal returns unit price times quantity
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type cartLineJSON struct {
	ProductID     uuid.UUID   `json:"productId"`
	Name          string      `json:"name"`
	UnitPrice     json.Number `json:"unitPrice"`
	Quantity      int         `json:"quantity"`
	ImageRef      string      `json:"imageRef,omitempty"`
	StockSnapshot int         `json:"stockSnapshot"`
}

// MarshalJSON writes the line in the mirror format with unitPrice as a JSON number
func (l CartLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartLineJSON{
		ProductID:     l.ProductID,
		Name:          l.Name,
		UnitPrice:     json.Number(l.UnitPrice.String()),
		Quantity:      l.Quantity,
		ImageRef:      l.ImageRef,
		StockSnapshot: l.StockSnapshot,
	})
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID     uuid.UUID       `json:"productId"`
		Name          string          `json:"name"`
		UnitPrice     decimal.Decimal `json:"unitPrice"`
		Quantity      int             `json:"quantity"`
		ImageRef      string          `json:"imageRef"`
		StockSnapshot int             `json:"stockSnapshot"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = CartLine{
		ProductID:     raw.ProductID,
		Name:          raw.Name,
		UnitPrice:     raw.UnitPrice,
		Quantity:      raw.Quantity,
		ImageRef:      raw.ImageRef,
		StockSnapshot: raw.StockSnapshot,
	}
	return nil
}

// Cart is an immutable snapshot of cart lines. Every transition returns a new
// Cart and leaves the receiver untouched. Totals are always derived from lines.
type Cart struct {
	lines []CartLine
}

// NewCart builds a cart from lines, validating line invariants
func NewCart(lines []CartLine) (Cart, error) {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return Cart{}, fmt.Errorf("%w: line without product id", ErrCorruptCart)
		}
		if _, dup := seen[l.ProductID]; dup {
			return Cart{}, fmt.Errorf("%w: duplicate product %s", ErrCorruptCart, l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
		if l.Quantity < 1 || l.Quantity > l.StockSnapshot {
			return Cart{}, fmt.Errorf("%w: product %s has quantity %d with stock %d",
				ErrCorruptCart, l.ProductID, l.Quantity, l.StockSnapshot)
		}
		if l.UnitPrice.IsNegative() {
			return Cart{}, fmt.Errorf("%w: product %s has a negative price", ErrCorruptCart, l.ProductID)
		}
	}
	return Cart{lines: append([]CartLine(nil), lines...)}, nil
}

// RestoreCart decodes the mirror format. Callers treat any error as an empty cart.
func RestoreCart(data []byte) (Cart, error) {
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	return NewCart(lines)
}

// Serialize encodes the cart lines in the mirror format
func (c Cart) Serialize() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []CartLine{}
	}
	return json.Marshal(lines)
}

// Lines returns a copy of the cart lines in insertion order
func (c Cart) Lines() []CartLine {
	return append([]CartLine(nil), c.lines...)
}

// Line returns the line for productID if present
func (c Cart) Line(productID uuid.UUID) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// TaxAmount is kept at full precision; round only when formatting
func (c Cart) TaxAmount() decimal.Decimal {
	return c.Subtotal().Mul(TaxRate)
}

func (c Cart) Total() decimal.Decimal {
	return c.Subtotal().Add(c.TaxAmount())
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// AddItem adds quantity units of p, merging with an existing line. The merged
// quantity is checked against p.Stock, the most recent stock observation.
func (c Cart) AddItem(p ProductSnapshot, quantity int) (Cart, error) {
	if quantity < 1 {
		return c, &apperror.FieldValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	i := c.indexOf(p.ID)
	requested := quantity
	if i >= 0 {
		requested += c.lines[i].Quantity
	}
	if err := CheckStock(requested, p.Stock); err != nil {
		return c, err
	}

	line := CartLine{
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		Quantity:      requested,
		ImageRef:      p.ImageRef,
		StockSnapshot: p.Stock,
	}

	next := c.Lines()
	if i >= 0 {
		next[i] = line
	} else {
		next = append(next, line)
	}
	return Cart{lines: next}, nil
}

// UpdateQuantity replaces the quantity of a line. Quantities below one remove
// the line. Updating a product that is not in the cart is a no-op.
func (c Cart) UpdateQuantity(productID uuid.UUID, quantity int) (Cart, error) {
	if quantity < 1 {
		return c.RemoveItem(productID), nil
	}

	i := c.indexOf(productID)
	if i < 0 {
		return c, nil
	}
	if err := CheckStock(quantity, c.lines[i].StockSnapshot); err != nil {
		return c, err
	}

	next := c.Lines()
	next[i].Quantity = quantity
	return Cart{lines: next}, nil
}

// RemoveItem drops the line for productID. The receiver is returned unchanged
// when the product is absent.
func (c Cart) RemoveItem(productID uuid.UUID) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	next := make([]CartLine, 0, len(c.lines)-1)
	next = append(next, c.lines[:i]...)
	next = append(next, c.lines[i+1:]...)
	return Cart{lines: next}
}

// Clear returns an empty cart
func (c Cart) Clear() Cart {
	return Cart{}
}

// Subtract removes the quantities in ordered from the cart. Lines that drop
// below one unit go away; lines ordered does not mention stay as they are.
func (c Cart) Subtract(ordered Cart) Cart {
	next := make([]CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		if o, ok := ordered.Line(l.ProductID); ok {
			l.Quantity -= o.Quantity
		}
		if l.Quantity >= 1 {
			next = append(next, l)
		}
	}
	return Cart{lines: next}
}

func (c Cart) indexOf(productID uuid.UUID) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// FormatAmount rounds an amount to two decimals for display
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// MarshalJSON renders the cart for API responses with display-rounded totals
func (c Cart) MarshalJSON() ([]byte, error) {
	type lineView struct {
		ProductID     uuid.UUID `json:"product_id"`
		Name          string    `json:"name"`
		UnitPrice     string    `json:"unit_price"`
		Quantity      int       `json:"quantity"`
		ImageRef      string    `json:"image_ref,omitempty"`
		StockSnapshot int       `json:"stock_snapshot"`
		Subtotal      string    `json:"subtotal"`
	}
	lines := make([]lineView, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, lineView{
			ProductID:     l.ProductID,
			Name:          l.Name,
			UnitPrice:     FormatAmount(l.UnitPrice),
			Quantity:      l.Quantity,
			ImageRef:      l.ImageRef,
			StockSnapshot: l.StockSnapshot,
			Subtotal:      FormatAmount(l.Subtotal()),
		})
	}
	return json.Marshal(struct {
		Lines     []lineView `json:"lines"`
		Subtotal  string     `json:"subtotal"`
		TaxAmount string     `json:"tax_amount"`
		Total     string     `json:"total"`
		ItemCount int        `json:"item_count"`
	}{
		Lines:     lines,
		Subtotal:  FormatAmount(c.Subtotal()),
		TaxAmount: FormatAmount(c.TaxAmount()),
		Total:     FormatAmount(c.Total()),
		ItemCount: c.ItemCount(),
	})
}
