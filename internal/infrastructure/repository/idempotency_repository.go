package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	domainRepo "github.com/sangkips/storefront-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIdempotencyRepository creates a repository for stored checkout responses
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db, now: time.Now}
}

// GetByKey only returns keys that have not expired yet
func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, ownerID uuid.UUID, endpoint string) (*entity.IdempotencyKey, error) {
	var stored entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND owner_id = ? AND endpoint = ? AND expires_at > ?", key, ownerID, endpoint, r.now()).
		Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Reserve inserts the key unless the unique index already holds it. An
// expired row for the same key is removed first so the key can be reused.
func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.
		Where("key = ? AND owner_id = ? AND endpoint = ? AND expires_at <= ?", ikey.Key, ikey.OwnerID, ikey.Endpoint, r.now()).
		Delete(&entity.IdempotencyKey{}).Error; err != nil {
		return false, err
	}

	ikey.ResponseCode = 0
	res := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}, {Name: "owner_id"}, {Name: "endpoint"}},
			DoNothing: true,
		}).
		Create(ikey)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, id uuid.UUID, code int, body string) error {
	return r.db.WithContext(ctx).Model(&entity.IdempotencyKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"response_code": code, "response_body": body}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.IdempotencyKey{}, "id = ?", id).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&entity.IdempotencyKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		slog.Debug("purged expired idempotency keys", "count", res.RowsAffected)
	}
	return nil
}
