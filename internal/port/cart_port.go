package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// CartRepository persists session carts so they survive a restart.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) ([]domain.CartEntry, error)
	// ReplaceCart stores entries as the complete cart of the owner.
	ReplaceCart(ctx context.Context, ownerID string, entries []domain.CartEntry) error
}
