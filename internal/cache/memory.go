package cache

import (
	"context"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type memoryCache struct {
	cfg config

	mu       sync.RWMutex
	snapshot *domain.CachedCatalog
}

// NewMemory keeps the snapshot in process memory.
func NewMemory(opts ...Option) port.CatalogCache {
	return &memoryCache{cfg: newConfig(opts)}
}

func (m *memoryCache) Read(_ context.Context) (*domain.CachedCatalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil || !m.snapshot.IsFresh(m.cfg.now(), m.cfg.ttl) {
		return nil, nil
	}

	return &domain.CachedCatalog{
		Products: cloneProducts(m.snapshot.Products),
		StoredAt: m.snapshot.StoredAt,
	}, nil
}

func (m *memoryCache) Write(_ context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = &domain.CachedCatalog{
		Products: cloneProducts(products),
		StoredAt: m.cfg.now(),
	}

	return nil
}
