package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlatformUser is the identity of the messenger user placing the order, if known.
type PlatformUser struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// AnonymousUser is attached to orders placed without a platform identity.
var AnonymousUser = PlatformUser{}

func (u PlatformUser) IsAnonymous() bool {
	return u.ID == 0
}

type LineItem struct {
	ProductID string
	Name      string
	Unit      string
	Price     decimal.Decimal
	Quantity  int
	Sum       decimal.Decimal
}

// OrderPayload is an immutable snapshot of one submission attempt.
type OrderPayload struct {
	Reference uuid.UUID
	Customer  CheckoutFields
	Items     []LineItem
	Totals    Totals
	User      PlatformUser
	Token     string
	CreatedAt time.Time
}

// NewOrderPayload snapshots the cart and the trimmed form fields.
func NewOrderPayload(fields CheckoutFields, cart *Cart, policy DeliveryPolicy, user PlatformUser, token string) OrderPayload {
	entries := cart.Items()
	items := make([]LineItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, LineItem{
			ProductID: entry.Product.ID,
			Name:      entry.Product.Name,
			Unit:      entry.Product.Unit,
			Price:     entry.Product.Price,
			Quantity:  entry.Quantity,
			Sum:       entry.Sum(),
		})
	}

	return OrderPayload{
		Reference: uuid.New(),
		Customer:  fields.Trimmed(),
		Items:     items,
		Totals:    policy.Quote(cart),
		User:      user,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
}

// OrderConfirmation is returned once the store accepted an order.
type OrderConfirmation struct {
	Reference uuid.UUID
	OrderID   string
	Totals    Totals
}
