package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/qroute/pkg/observability"
)

// Instrumented reports hits, misses and writes to the registered
// [observability.CacheHooks]. Keys are classified by the namespace they
// carry (route or artifact), so scoped keys are classified too.
type Instrumented struct {
	inner Cache
}

// Instrument wraps c. Wrapping twice is a no-op.
func Instrument(c Cache) *Instrumented {
	if i, ok := c.(*Instrumented); ok {
		return i
	}
	return &Instrumented{inner: c}
}

// Unwrap returns the wrapped cache.
func (c *Instrumented) Unwrap() Cache { return c.inner }

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.inner.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.inner.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func (c *Instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Clear forwards to the wrapped cache if it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) error {
	if cl, ok := c.inner.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

func (c *Instrumented) Close() error { return c.inner.Close() }

func keyType(key string) string {
	for _, kind := range []string{KindRoute, KindArtifact} {
		if i := strings.Index(key, kind+":"); i >= 0 && (i == 0 || key[i-1] == ':') {
			return kind
		}
	}
	return "other"
}

var (
	_ Cache   = (*Instrumented)(nil)
	_ Clearer = (*Instrumented)(nil)
)
