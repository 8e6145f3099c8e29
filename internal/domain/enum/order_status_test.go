package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusConfirmed, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	rejected := []struct{ from, to OrderStatus }{
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusConfirmed, OrderStatusPending},
		{OrderStatusPending, OrderStatusPending},
	}
	for _, tc := range rejected {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusConfirmed.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestOrderStatus_JSON(t *testing.T) {
	b, err := json.Marshal(OrderStatusShipped)
	require.NoError(t, err)
	assert.JSONEq(t, `"shipped"`, string(b))

	var s OrderStatus
	require.NoError(t, json.Unmarshal([]byte(`"cancelado"`), &s))
	assert.Equal(t, OrderStatusCancelled, s)

	assert.Error(t, json.Unmarshal([]byte(`"lost"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`9`), &s))
}

func TestParsePaymentMethod(t *testing.T) {
	cases := map[string]PaymentMethod{
		"cash":          PaymentMethodCash,
		"efectivo":      PaymentMethodCash,
		"Card":          PaymentMethodCard,
		"tarjeta":       PaymentMethodCard,
		" transfer ":    PaymentMethodTransfer,
		"transferencia": PaymentMethodTransfer,
	}
	for in, want := range cases {
		got, err := ParsePaymentMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePaymentMethod("bitcoin")
	assert.Error(t, err)
}
