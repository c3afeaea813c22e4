package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	DefaultDeliveryFee           = decimal.NewFromInt(200)
	DefaultFreeDeliveryThreshold = decimal.NewFromInt(2000)
)

// DeliveryPolicy charges a flat fee on non-empty orders below the free delivery threshold.
type DeliveryPolicy struct {
	Fee           decimal.Decimal
	FreeThreshold decimal.Decimal
	Currency      currency.Unit
}

func DefaultDeliveryPolicy(unit currency.Unit) DeliveryPolicy {
	return DeliveryPolicy{
		Fee:           DefaultDeliveryFee,
		FreeThreshold: DefaultFreeDeliveryThreshold,
		Currency:      unit,
	}
}

// Totals is the price breakdown of a cart at one point in time.
type Totals struct {
	Subtotal   Money
	Delivery   Money
	GrandTotal Money
}

func Subtotal(cart *Cart) decimal.Decimal {
	subtotal := decimal.Zero
	for _, entry := range cart.entries {
		subtotal = subtotal.Add(entry.Sum())
	}
	return subtotal
}

// DeliveryFee is zero for an empty order and for orders at or above the threshold.
func (p DeliveryPolicy) DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || subtotal.GreaterThanOrEqual(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

func GrandTotal(subtotal, deliveryFee decimal.Decimal) decimal.Decimal {
	return subtotal.Add(deliveryFee)
}

// Quote derives all totals from the current cart contents.
func (p DeliveryPolicy) Quote(cart *Cart) Totals {
	subtotal := Subtotal(cart)
	fee := p.DeliveryFee(subtotal)

	return Totals{
		Subtotal:   NewMoney(subtotal, p.Currency),
		Delivery:   NewMoney(fee, p.Currency),
		GrandTotal: NewMoney(GrandTotal(subtotal, fee), p.Currency),
	}
}
