package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus represents the status of an order
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 0
	OrderStatusConfirmed OrderStatus = 1
	OrderStatusShipped   OrderStatus = 2
	OrderStatusDelivered OrderStatus = 3
	OrderStatusCancelled OrderStatus = 4
)

var orderStatusNames = [...]string{"pending", "confirmed", "shipped", "delivered", "cancelled"}

// orderStatusTransitions lists every allowed move. Anything absent is rejected.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func (s OrderStatus) String() string {
	if int(s) < 0 || int(s) >= len(orderStatusNames) {
		return "pending"
	}
	return orderStatusNames[s]
}

// IsValid reports whether s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	return int(s) >= 0 && int(s) < len(orderStatusNames)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus parses a status name, accepting the legacy Spanish labels
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "pendiente":
		return OrderStatusPending, nil
	case "confirmed", "confirmado":
		return OrderStatusConfirmed, nil
	case "shipped", "enviado":
		return OrderStatusShipped, nil
	case "delivered", "entregado":
		return OrderStatusDelivered, nil
	case "cancelled", "canceled", "cancelado":
		return OrderStatusCancelled, nil
	}
	return OrderStatusPending, fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !OrderStatus(i).IsValid() {
			return fmt.Errorf("unknown order status %d", i)
		}
		*s = OrderStatus(i)
		return nil
	}
	parsed, err := ParseOrderStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderStatus(v)
	case int:
		*s = OrderStatus(v)
	}
	return nil
}
