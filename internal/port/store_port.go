package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// StoreClient talks to the spreadsheet-backed store API, directly or through the proxy.
// PlaceOrder failures are *domain.SubmitError.
type StoreClient interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
	PlaceOrder(ctx context.Context, payload domain.OrderPayload) (string, error)
}
