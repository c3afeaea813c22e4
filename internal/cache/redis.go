package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
)

type redisCache struct {
	client *redis.Client
	cfg    config
}

// NewRedis shares the snapshot between replicas. The key expires after the TTL and
// the stored timestamp is checked as well, so a clock-controlled Read agrees with the memory cache.
func NewRedis(client *redis.Client, opts ...Option) (port.CatalogCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	return &redisCache{
		client: client,
		cfg:    newConfig(opts),
	}, nil
}

type cachedCatalogJSON struct {
	StoredAt time.Time     `json:"stored_at"`
	Products []productJSON `json:"products"`
}

type productJSON struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Sort        float64         `json:"sort"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
}

func (r *redisCache) Read(ctx context.Context) (*domain.CachedCatalog, error) {
	data, err := r.client.Get(ctx, r.cfg.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	var stored cachedCatalogJSON
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	snapshot := domain.CachedCatalog{
		Products: make([]domain.Product, 0, len(stored.Products)),
		StoredAt: stored.StoredAt,
	}
	if !snapshot.IsFresh(r.cfg.now(), r.cfg.ttl) {
		return nil, nil
	}

	for _, p := range stored.Products {
		snapshot.Products = append(snapshot.Products, domain.Product{
			ID:          p.ID,
			Category:    p.Category,
			Name:        p.Name,
			Unit:        p.Unit,
			Price:       p.Price,
			Sort:        p.Sort,
			Description: p.Description,
			Image:       p.Image,
		})
	}

	return &snapshot, nil
}

func (r *redisCache) Write(ctx context.Context, products []domain.Product) error {
	stored := cachedCatalogJSON{
		StoredAt: r.cfg.now().UTC(),
		Products: make([]productJSON, 0, len(products)),
	}

	for _, p := range products {
		stored.Products = append(stored.Products, productJSON{
			ID:          p.ID,
			Category:    p.Category,
			Name:        p.Name,
			Unit:        p.Unit,
			Price:       p.Price,
			Sort:        p.Sort,
			Description: p.Description,
			Image:       p.Image,
		})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.client.Set(ctx, r.cfg.key, data, r.cfg.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}
