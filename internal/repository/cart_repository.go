package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) ([]domain.CartEntry, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	rows, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.GetCart: %w", err)
	}

	return mapGetCartRowsToDomain(rows), nil
}

func (r *cartRepository) ReplaceCart(ctx context.Context, ownerID string, entries []domain.CartEntry) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	for _, entry := range entries {
		if entry.Quantity <= 0 {
			return fmt.Errorf("product[%s] quantity %d is not positive", entry.Product.ID, entry.Quantity)
		}
		if entry.Quantity > math.MaxInt32 {
			return fmt.Errorf("product[%s] quantity %d is out of range", entry.Product.ID, entry.Quantity)
		}
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) error {
		if _, err := q.ClearCart(ctx, ownerID); err != nil {
			return fmt.Errorf("q.ClearCart: %w", err)
		}

		for _, entry := range entries {
			if err := q.AddItem(ctx, mapEntryToAddItemParams(ownerID, entry)); err != nil {
				return fmt.Errorf("q.AddItem: %w", err)
			}
		}

		return nil
	})
}

func mapEntryToAddItemParams(ownerID string, entry domain.CartEntry) db.AddItemParams {
	p := entry.Product

	return db.AddItemParams{
		OwnerID:     ownerID,
		ProductID:   p.ID,
		Category:    p.Category,
		Name:        p.Name,
		Unit:        p.Unit,
		PriceAmount: p.Price,
		SortKey:     p.Sort,
		Description: p.Description,
		Image:       p.Image,
		Quantity:    int32(entry.Quantity),
	}
}

func mapGetCartRowToDomain(row db.GetCartRow) domain.CartEntry {
	return domain.CartEntry{
		Product: domain.Product{
			ID:          row.ProductID,
			Category:    row.Category,
			Name:        row.Name,
			Unit:        row.Unit,
			Price:       row.PriceAmount,
			Sort:        row.SortKey,
			Description: row.Description,
			Image:       row.Image,
		},
		Quantity: int(row.Quantity),
	}
}

func mapGetCartRowsToDomain(rows []db.GetCartRow) []domain.CartEntry {
	entries := make([]domain.CartEntry, 0, len(rows))

	for _, row := range rows {
		entries = append(entries, mapGetCartRowToDomain(row))
	}

	return entries
}
