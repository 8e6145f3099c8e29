package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	domainRepo "github.com/sangkips/storefront-api/internal/domain/repository"
	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) domainRepo.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &profile, err
}

func (r *profileRepository) UpdateCheckoutDetails(ctx context.Context, id uuid.UUID, shippingAddress string, taxID *string) error {
	updates := map[string]interface{}{"shipping_address": shippingAddress}
	if taxID != nil {
		updates["tax_id"] = *taxID
	}

	res := r.db.WithContext(ctx).Model(&entity.Profile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	profile := &entity.Profile{ID: id, ShippingAddress: shippingAddress}
	if taxID != nil {
		profile.TaxID = *taxID
	}
	return r.db.WithContext(ctx).Create(profile).Error
}
