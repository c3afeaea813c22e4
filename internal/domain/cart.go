package domain

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// CartEntry pairs a product snapshot with a positive quantity.
type CartEntry struct {
	Product  Product
	Quantity int
}

func (e CartEntry) Sum() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart maps product ids to entries. An entry never holds a quantity below one:
// every mutation that would leave it at zero or less removes it instead.
//
// Cart is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	entries map[string]CartEntry
}

// MaxQuantity caps a single entry. Larger quantities are clamped.
const MaxQuantity = 9999

func NewCart() *Cart {
	return &Cart{entries: make(map[string]CartEntry)}
}

// Add puts one more unit of the product into the cart, creating the entry on first add.
// The stored snapshot is replaced with the given product.
func (c *Cart) Add(product Product) {
	entry := c.entries[product.ID]
	entry.Product = product
	entry.Quantity = min(entry.Quantity+1, MaxQuantity)
	c.entries[product.ID] = entry
}

// Put creates or overwrites the entry for the product with qty.
// A non-positive qty removes the entry, a qty above MaxQuantity is clamped.
func (c *Cart) Put(product Product, qty int) {
	if qty <= 0 {
		delete(c.entries, product.ID)
		return
	}
	c.entries[product.ID] = CartEntry{Product: product, Quantity: min(qty, MaxQuantity)}
}

// SetQuantity overwrites the quantity of an existing entry. A non-positive qty removes it.
// Ids that are not in the cart are ignored, there is no product snapshot to create them from.
func (c *Cart) SetQuantity(productID string, qty int) {
	entry, ok := c.entries[productID]
	if !ok {
		return
	}
	c.Put(entry.Product, qty)
}

func (c *Cart) Increment(productID string) {
	if entry, ok := c.entries[productID]; ok {
		c.SetQuantity(productID, entry.Quantity+1)
	}
}

func (c *Cart) Decrement(productID string) {
	if entry, ok := c.entries[productID]; ok {
		c.SetQuantity(productID, entry.Quantity-1)
	}
}

// Remove deletes the entry and reports whether it was present.
func (c *Cart) Remove(productID string) bool {
	_, ok := c.entries[productID]
	delete(c.entries, productID)
	return ok
}

// RemoveOrdered takes the ordered quantities out of the cart. Units added after
// the order snapshot was taken stay in the cart.
func (c *Cart) RemoveOrdered(ordered []CartEntry) {
	for _, o := range ordered {
		entry, ok := c.entries[o.Product.ID]
		if !ok {
			continue
		}
		c.Put(entry.Product, entry.Quantity-o.Quantity)
	}
}

func (c *Cart) Clear() {
	clear(c.entries)
}

func (c *Cart) Clone() *Cart {
	clone := &Cart{entries: make(map[string]CartEntry, len(c.entries))}
	for id, entry := range c.entries {
		clone.entries[id] = entry
	}
	return clone
}

func (c *Cart) Entry(productID string) (CartEntry, bool) {
	entry, ok := c.entries[productID]
	return entry, ok
}

// Items returns a copy of the entries ordered by product sort key, then name, then id.
func (c *Cart) Items() []CartEntry {
	items := make([]CartEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		items = append(items, entry)
	}

	slices.SortFunc(items, func(a, b CartEntry) int {
		return cmp.Or(
			cmp.Compare(a.Product.Sort, b.Product.Sort),
			cmp.Compare(a.Product.Name, b.Product.Name),
			cmp.Compare(a.Product.ID, b.Product.ID),
		)
	})

	return items
}

// Count is the sum of all quantities.
func (c *Cart) Count() int {
	var count int
	for _, entry := range c.entries {
		count += entry.Quantity
	}
	return count
}

func (c *Cart) Len() int {
	return len(c.entries)
}

func (c *Cart) IsEmpty() bool {
	return len(c.entries) == 0
}
