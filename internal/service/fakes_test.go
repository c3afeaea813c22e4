package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type fakeStore struct {
	mu       sync.Mutex
	products []domain.Product
	fetchErr error
	placeErr error
	orderID  string
	orders   []domain.OrderPayload

	// when set, PlaceOrder signals entered and waits for release or ctx
	entered chan struct{}
	release chan struct{}

	// when set, FetchProducts signals fetchEntered and waits for fetchRelease or ctx
	fetchEntered chan struct{}
	fetchRelease chan struct{}

	fetchCalls atomic.Int32
	placeCalls atomic.Int32
}

func (f *fakeStore) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	f.fetchCalls.Add(1)

	if f.fetchEntered != nil {
		f.fetchEntered <- struct{}{}
		select {
		case <-f.fetchRelease:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeStore) PlaceOrder(ctx context.Context, payload domain.OrderPayload) (string, error) {
	f.placeCalls.Add(1)

	if f.entered != nil {
		f.entered <- struct{}{}
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", &domain.SubmitError{Kind: domain.SubmitTimeout, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.placeErr != nil {
		return "", f.placeErr
	}
	f.orders = append(f.orders, payload)
	return f.orderID, nil
}

func (f *fakeStore) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeStore) placed() []domain.OrderPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.OrderPayload(nil), f.orders...)
}

type fakeCartRepository struct {
	mu       sync.Mutex
	carts    map[string][]domain.CartEntry
	saveErr  error
	getErr   error
	replaces int

	// when set, GetCart for slowOwner signals getEntered and waits for getRelease
	slowOwner  string
	getEntered chan struct{}
	getRelease chan struct{}
}

func newFakeCartRepository() *fakeCartRepository {
	return &fakeCartRepository{carts: make(map[string][]domain.CartEntry)}
}

func (r *fakeCartRepository) GetCart(_ context.Context, ownerID string) ([]domain.CartEntry, error) {
	if r.slowOwner != "" && ownerID == r.slowOwner {
		r.getEntered <- struct{}{}
		<-r.getRelease
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}
	return append([]domain.CartEntry(nil), r.carts[ownerID]...), nil
}

func (r *fakeCartRepository) ReplaceCart(_ context.Context, ownerID string, entries []domain.CartEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replaces++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[ownerID] = append([]domain.CartEntry(nil), entries...)
	return nil
}

func (r *fakeCartRepository) stored(ownerID string) []domain.CartEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[ownerID]
}

func product(id string, price int64) domain.Product {
	return domain.Product{
		ID:       id,
		Category: "fruit",
		Name:     "product " + id,
		Unit:     "kg",
		Price:    decimal.NewFromInt(price),
	}
}

var validFields = domain.CheckoutFields{
	Name:    "Anna",
	Phone:   "+7 900 000 00 00",
	Address: "Main street 1",
	Comment: "leave at the door",
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
