package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
)

// ProfileRepository defines the interface for profile operations
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	// UpdateCheckoutDetails stores the shipping address, and the tax id when
	// taxID is non-nil, creating the profile if it does not exist yet.
	UpdateCheckoutDetails(ctx context.Context, id uuid.UUID, shippingAddress string, taxID *string) error
}
