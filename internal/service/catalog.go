package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultFetchTimeout = 15 * time.Second

type Source int

const (
	SourceCache Source = iota + 1
	SourceNetwork
)

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ShowFunc receives every product list the catalog decides to display.
type ShowFunc func(products []domain.Product, source Source)

// Catalog holds the displayed product list. It is independent of any cart,
// a refresh never touches cart contents.
type Catalog struct {
	client       port.StoreClient
	cache        port.CatalogCache
	logger       *zap.Logger
	fetchTimeout time.Duration

	group singleflight.Group

	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]domain.Product
}

func NewCatalog(client port.StoreClient, cache port.CatalogCache, fetchTimeout time.Duration, logger *zap.Logger) (*Catalog, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache is nil")
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Catalog{
		client:       client,
		cache:        cache,
		logger:       logger,
		fetchTimeout: fetchTimeout,
		byID:         make(map[string]domain.Product),
	}, nil
}

// Load shows a fresh cached list right away, then always fetches from the store.
// A failed fetch is only reported when no fresh cache could be shown.
func (c *Catalog) Load(ctx context.Context, show ShowFunc) error {
	shown := false

	cached, err := c.cache.Read(ctx)
	if err != nil {
		c.logger.Warn("read catalog cache", zap.Error(err))
	}
	if cached != nil {
		c.replace(cached.Products)
		c.show(show, SourceCache)
		shown = true
	}

	products, err := c.fetch(ctx)
	if err != nil {
		if shown {
			c.logger.Info("catalog refresh failed, keeping cached list", zap.Error(err))
			return nil
		}
		return &domain.CatalogLoadError{Err: err}
	}

	if err := c.cache.Write(ctx, products); err != nil {
		c.logger.Warn("write catalog cache", zap.Error(err))
	}

	c.replace(products)
	c.show(show, SourceNetwork)

	return nil
}

// fetch shares one request between concurrent callers. The shared request does not
// inherit any caller's cancellation, each caller only stops waiting on its own ctx.
func (c *Catalog) fetch(ctx context.Context) ([]domain.Product, error) {
	ch := c.group.DoChan("products", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		return c.client.FetchProducts(fetchCtx)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch products: %w", ctx.Err())
	case res = <-ch:
	}

	if res.Err != nil {
		return nil, fmt.Errorf("client.FetchProducts: %w", res.Err)
	}

	products := res.Val.([]domain.Product)
	c.logger.Debug("fetched catalog", zap.Int("count", len(products)), zap.Bool("shared", res.Shared))

	return products, nil
}

func (c *Catalog) replace(products []domain.Product) {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b domain.Product) int {
		return cmp.Or(
			cmp.Compare(a.Sort, b.Sort),
			cmp.Compare(a.Name, b.Name),
		)
	})

	byID := make(map[string]domain.Product, len(sorted))
	for _, p := range sorted {
		byID[p.ID] = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = sorted
	c.byID = byID
}

func (c *Catalog) show(show ShowFunc, source Source) {
	if show != nil {
		show(c.Products(), source)
	}
}

// Products returns the displayed list in display order.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.products)
}

func (c *Catalog) Product(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	return p, ok
}

// Categories lists the distinct categories of the displayed list in display order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CategoriesOf(c.products)
}

// CategoriesOf lists the distinct non-empty categories of products in order of first appearance.
func CategoriesOf(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}
