package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethod is how the customer pays for an order
type PaymentMethod int

const (
	PaymentMethodCash     PaymentMethod = 0
	PaymentMethodCard     PaymentMethod = 1
	PaymentMethodTransfer PaymentMethod = 2
)

func (p PaymentMethod) String() string {
	names := [...]string{"cash", "card", "transfer"}
	if int(p) < 0 || int(p) >= len(names) {
		return "cash"
	}
	return names[p]
}

// ParsePaymentMethod parses a method name. The storefront form historically
// posted efectivo/tarjeta/transferencia, so those are accepted as well.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "efectivo":
		return PaymentMethodCash, nil
	case "card", "tarjeta":
		return PaymentMethodCard, nil
	case "transfer", "transferencia":
		return PaymentMethodTransfer, nil
	}
	return PaymentMethodCash, fmt.Errorf("unknown payment method %q", s)
}

func (p PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p PaymentMethod) Value() (driver.Value, error) {
	return int64(p), nil
}

func (p *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*p = PaymentMethod(v)
	case int:
		*p = PaymentMethod(v)
	}
	return nil
}
