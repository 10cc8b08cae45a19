// Package cache stores routed results and rendered artifacts in a file
// tree, in Redis, or nowhere.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Backends accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Addr    string `toml:"redis_addr"`
	Prefix  string `toml:"prefix"`
}

// Default entry lifetimes. Routed results depend only on their inputs, so
// they live long; the TTL only bounds disk and memory use.
const (
	TTLRoute    = 30 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Open returns the configured backend wrapped with [Instrument].
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("cache: file backend needs a directory")
		}
		c, err = NewFileCache(cfg.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.Addr, cfg.Prefix)
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(c), nil
}
