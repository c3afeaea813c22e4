// Package cache holds the catalog snapshot shown while a fresh list is fetched.
package cache

import (
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
)

const (
	DefaultTTL = 10 * time.Minute
	DefaultKey = "storefront:catalog"
)

type config struct {
	ttl time.Duration
	key string
	now func() time.Time
}

type Option func(*config)

// WithTTL sets how long a snapshot is considered fresh.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKey sets the Redis key of the snapshot. Ignored by the memory cache.
func WithKey(key string) Option {
	return func(c *config) {
		if key != "" {
			c.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		ttl: DefaultTTL,
		key: DefaultKey,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func cloneProducts(products []domain.Product) []domain.Product {
	if products == nil {
		return nil
	}
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out
}
