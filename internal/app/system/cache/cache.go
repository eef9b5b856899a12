// Package cache is the key/value gateway used for short-lived data such as
// archived quiz attempts.
//
// Two backends implement Cache: Redis, and a MongoDB collection with a TTL
// index for deployments that run without Redis. The cache is auxiliary:
// nothing in the data model depends on an entry surviving, and entries may
// vanish after their TTL or under eviction.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a string key/value store with expiry and glob key enumeration.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	// Keys returns live keys matching a glob pattern (* and ?).
	Keys(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects the configured backend and verifies it with a ping.
// db is only used by the mongo backend.
func Open(ctx context.Context, cfg Config, db *mongo.Database, logger *zap.Logger) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case BackendRedis:
		c = NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case BackendMongo:
		c, err = NewMongo(ctx, db)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("cache: %s ping: %w", cfg.Backend, err)
	}
	logger.Info("cache connected", zap.String("backend", cfg.Backend))
	return c, nil
}
