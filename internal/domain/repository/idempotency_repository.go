package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations.
// Keys are scoped to their owner and endpoint.
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key string, ownerID uuid.UUID, endpoint string) (*entity.IdempotencyKey, error)
	// Reserve stores ikey as pending. It reports false when an unexpired key
	// with the same owner and endpoint already exists.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete records the response for a reserved key
	Complete(ctx context.Context, id uuid.UUID, code int, body string) error
	// Release drops a reservation so the request can be retried
	Release(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
