package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/storefront-api/internal/config"
	"github.com/sangkips/storefront-api/internal/domain/repository"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// NewCartMirror opens the backend selected by cfg.MirrorDriver
func NewCartMirror(cfg *config.CartConfig) (repository.CartMirror, error) {
	switch cfg.MirrorDriver {
	case DriverSQLite, "":
		return OpenSQLiteMirror(cfg.SQLitePath)
	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisMirror(client, cfg.MirrorTTL), nil
	}
	return nil, fmt.Errorf("unknown cart mirror driver %q", cfg.MirrorDriver)
}

func cacheKey(session string) string {
	return fmt.Sprintf("cart:%s", session)
}
