package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/storefront/internal/cache"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type cacheFactory func(t *testing.T, opts ...cache.Option) port.CatalogCache

func factories() map[string]cacheFactory {
	return map[string]cacheFactory{
		"memory": func(t *testing.T, opts ...cache.Option) port.CatalogCache {
			return cache.NewMemory(opts...)
		},
		"redis": func(t *testing.T, opts ...cache.Option) port.CatalogCache {
			_, client := setupTestRedis(t)
			c, err := cache.NewRedis(client, opts...)
			require.NoError(t, err)
			return c
		},
	}
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestCatalogCache_ReadWrite(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			clock := &fakeClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
			c := factory(t, cache.WithTTL(10*time.Minute), cache.WithClock(clock.Now))

			snapshot, err := c.Read(ctx)
			require.NoError(t, err)
			assert.Nil(t, snapshot, "empty cache reads as nil")

			products := randomProducts(3)
			require.NoError(t, c.Write(ctx, products))

			clock.Advance(9*time.Minute + 59*time.Second)
			snapshot, err = c.Read(ctx)
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			assertProducts(t, products, snapshot.Products)
			assert.True(t, snapshot.StoredAt.Equal(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)))

			clock.Advance(time.Second)
			snapshot, err = c.Read(ctx)
			require.NoError(t, err)
			assert.Nil(t, snapshot, "snapshot is stale at exactly the TTL")
		})
	}
}

func TestCatalogCache_WriteOverwrites(t *testing.T) {
	for name, factory := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			clock := &fakeClock{now: time.Now()}
			c := factory(t, cache.WithClock(clock.Now))

			require.NoError(t, c.Write(ctx, randomProducts(2)))
			clock.Advance(8 * time.Minute)

			latest := randomProducts(1)
			require.NoError(t, c.Write(ctx, latest))
			clock.Advance(8 * time.Minute)

			snapshot, err := c.Read(ctx)
			require.NoError(t, err)
			require.NotNil(t, snapshot, "the second write restarted the TTL")
			assertProducts(t, latest, snapshot.Products)
		})
	}
}

func TestMemoryCache_ReadReturnsCopy(t *testing.T) {
	ctx := t.Context()
	c := cache.NewMemory()

	products := randomProducts(2)
	require.NoError(t, c.Write(ctx, products))
	products[0].Name = "changed after write"

	snapshot, err := c.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.NotEqual(t, "changed after write", snapshot.Products[0].Name)
}

func TestRedisCache_KeyExpires(t *testing.T) {
	ctx := t.Context()
	mr, client := setupTestRedis(t)

	c, err := cache.NewRedis(client, cache.WithTTL(time.Minute), cache.WithKey("test:catalog"))
	require.NoError(t, err)

	require.NoError(t, c.Write(ctx, randomProducts(1)))
	assert.True(t, mr.Exists("test:catalog"))
	assert.Equal(t, time.Minute, mr.TTL("test:catalog"))

	mr.FastForward(time.Minute)
	snapshot, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestRedisCache_CorruptedSnapshot(t *testing.T) {
	ctx := t.Context()
	mr, client := setupTestRedis(t)
	require.NoError(t, mr.Set(cache.DefaultKey, "not json"))

	c, err := cache.NewRedis(client)
	require.NoError(t, err)

	snapshot, err := c.Read(ctx)
	require.Error(t, err)
	assert.Nil(t, snapshot)
}

func TestNewRedis_NilClient(t *testing.T) {
	_, err := cache.NewRedis(nil)
	require.EqualError(t, err, "redis client is nil")
}

func randomProducts(n int) []domain.Product {
	products := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, domain.Product{
			ID:          gofakeit.UUID(),
			Category:    gofakeit.ProductCategory(),
			Name:        gofakeit.ProductName(),
			Unit:        "pcs",
			Price:       decimal.NewFromFloat(gofakeit.Price(1, 5000)).Round(2),
			Sort:        float64(i),
			Description: gofakeit.ProductDescription(),
		})
	}
	return products
}

func assertProducts(t *testing.T, expected, actual []domain.Product) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected, actual, decimalComparer)
	assert.Empty(t, diff)
}
