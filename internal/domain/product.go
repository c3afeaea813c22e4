package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as published by the store API.
type Product struct {
	ID          string
	Category    string
	Name        string
	Unit        string
	Price       decimal.Decimal
	Sort        float64
	Description string
	Image       string
}

// CachedCatalog is a timestamped snapshot of the product list.
type CachedCatalog struct {
	Products []Product
	StoredAt time.Time
}

func (c CachedCatalog) IsFresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.StoredAt) < ttl
}
