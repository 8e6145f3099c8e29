package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sangkips/storefront-api/internal/application/service"
	"github.com/sangkips/storefront-api/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

const eventTypeOrderPlaced = "order.placed"

// messageWriter is the part of kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends order events to a kafka topic. Writes go through a
// circuit breaker so an unreachable broker fails fast instead of stalling
// every checkout's background step.
type KafkaPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic on cfg.KafkaBrokers
func NewKafkaPublisher(cfg *config.EventsConfig) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return newKafkaPublisher(w)
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	settings := gobreaker.Settings{
		Name:        "order-events",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &KafkaPublisher{
		writer:  w,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// PublishOrderPlaced writes the event keyed by order id
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event service.OrderPlacedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventTypeOrderPlaced)},
		},
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewOrderEventPublisher returns a kafka publisher when brokers are
// configured and a no-op publisher otherwise. The returned close function
// is always safe to call.
func NewOrderEventPublisher(cfg *config.EventsConfig) (service.OrderEventPublisher, func() error) {
	if len(cfg.KafkaBrokers) == 0 {
		slog.Info("no kafka brokers configured, order events disabled")
		return service.NoopPublisher{}, func() error { return nil }
	}

	p := NewKafkaPublisher(cfg)
	slog.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", cfg.Topic)
	return p, p.Close
}
