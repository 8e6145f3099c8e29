package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/storefront-api/internal/domain/repository"
)

// RedisMirror keeps cart mirrors as redis strings. A zero TTL keeps entries
// until they are deleted.
type RedisMirror struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisMirror(client *redis.Client, ttl time.Duration) *RedisMirror {
	return &RedisMirror{
		client:  client,
		baseTTL: ttl,
	}
}

func (r *RedisMirror) Load(ctx context.Context, session string) ([]byte, error) {
	data, err := r.client.Get(ctx, cacheKey(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrMirrorMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisMirror) Save(ctx context.Context, session string, payload []byte) error {
	if err := r.client.Set(ctx, cacheKey(session), payload, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisMirror) Delete(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, cacheKey(session)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisMirror) Close() error {
	return r.client.Close()
}

// ttl spreads expiry over an extra hour so idle carts do not expire together
func (r *RedisMirror) ttl() time.Duration {
	if r.baseTTL <= 0 {
		return 0
	}
	return r.baseTTL + time.Duration(rand.Intn(60))*time.Minute
}
