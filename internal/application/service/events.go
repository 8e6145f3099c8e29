package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderPlacedEvent is announced after a successful checkout
type OrderPlacedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Total       string    `json:"total"`
	LineCount   int       `json:"line_count"`
	PlacedAt    time.Time `json:"placed_at"`
}

// OrderEventPublisher delivers order events to interested consumers
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, OrderPlacedEvent) error {
	return nil
}
