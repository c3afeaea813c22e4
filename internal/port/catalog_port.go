package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// CatalogCache keeps the last fetched product list for a limited time.
// Read returns nil without error when there is no fresh snapshot.
type CatalogCache interface {
	Read(ctx context.Context) (*domain.CachedCatalog, error)
	Write(ctx context.Context, products []domain.Product) error
}
