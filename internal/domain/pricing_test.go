package domain_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"
)

func TestDeliveryPolicy_DeliveryFee(t *testing.T) {
	policy := domain.DefaultDeliveryPolicy(currency.RUB)

	tests := []struct {
		subtotal string
		want     int64
	}{
		{subtotal: "0", want: 0},
		{subtotal: "0.01", want: 200},
		{subtotal: "1", want: 200},
		{subtotal: "1999", want: 200},
		{subtotal: "1999.99", want: 200},
		{subtotal: "2000", want: 0},
		{subtotal: "2001", want: 0},
		{subtotal: "-5", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			fee := policy.DeliveryFee(decimal.RequireFromString(tt.subtotal))
			assert.True(t, fee.Equal(decimal.NewFromInt(tt.want)), "got %s", fee)
		})
	}
}

func TestDeliveryPolicy_Quote(t *testing.T) {
	policy := domain.DefaultDeliveryPolicy(currency.RUB)

	tests := []struct {
		name         string
		fill         func(c *domain.Cart)
		wantSubtotal int64
		wantDelivery int64
	}{
		{
			name:         "empty cart has no delivery",
			fill:         func(c *domain.Cart) {},
			wantSubtotal: 0,
			wantDelivery: 0,
		},
		{
			name: "below threshold",
			fill: func(c *domain.Cart) {
				c.Add(product("P1", 500))
				c.Add(product("P1", 500))
			},
			wantSubtotal: 1000,
			wantDelivery: 200,
		},
		{
			name: "exactly at threshold",
			fill: func(c *domain.Cart) {
				c.Put(product("P1", 500), 4)
			},
			wantSubtotal: 2000,
			wantDelivery: 0,
		},
		{
			name: "mixed entries above threshold",
			fill: func(c *domain.Cart) {
				c.Put(product("P1", 700), 2)
				c.Put(product("P2", 333), 3)
			},
			wantSubtotal: 2399,
			wantDelivery: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := domain.NewCart()
			tt.fill(cart)

			totals := policy.Quote(cart)

			assert.True(t, totals.Subtotal.Amount.Equal(decimal.NewFromInt(tt.wantSubtotal)))
			assert.True(t, totals.Delivery.Amount.Equal(decimal.NewFromInt(tt.wantDelivery)))
			assert.True(t, totals.GrandTotal.Amount.Equal(totals.Subtotal.Amount.Add(totals.Delivery.Amount)))
			assert.Equal(t, currency.RUB, totals.GrandTotal.Currency)
		})
	}
}

func TestQuote_TracksCartMutations(t *testing.T) {
	policy := domain.DefaultDeliveryPolicy(currency.RUB)
	cart := domain.NewCart()

	cart.Put(product("P1", 1000), 2)
	assert.True(t, policy.Quote(cart).Delivery.IsZero())

	cart.Decrement("P1")
	assert.Equal(t, "1200.00 RUB", policy.Quote(cart).GrandTotal.String())

	cart.Clear()
	assert.True(t, policy.Quote(cart).GrandTotal.IsZero())
}
