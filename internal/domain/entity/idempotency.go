package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey stores the response of a processed checkout submission so a
// client retry replays it instead of placing a second order. A key is reserved
// with a zero ResponseCode while its request is running.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_owner_key;size:255;not null"`
	OwnerID      uuid.UUID `gorm:"uniqueIndex:idx_idempotency_owner_key;type:uuid;not null"`
	Endpoint     string    `gorm:"uniqueIndex:idx_idempotency_owner_key;size:255;not null"`
	ResponseCode int       `gorm:"not null;default:0"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// BeforeCreate generates a UUID before storing the key
func (i *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsPending reports whether the request holding the key has not finished yet
func (i *IdempotencyKey) IsPending() bool {
	return i.ResponseCode == 0
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
