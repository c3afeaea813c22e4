package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

var (
	ErrSubmitInFlight  = errors.New("order submission already in progress")
	ErrSessionNotFound = errors.New("session not found")
)

// CartView is what a client renders: entries, badge count and totals.
type CartView struct {
	Items  []domain.CartEntry
	Count  int
	Totals domain.Totals
}

// Session owns one cart and one checkout form for the lifetime of a storefront visit.
type Session struct {
	id        string
	submitter *Submitter
	repo      port.CartRepository
	logger    *zap.Logger

	submitting atomic.Bool
	lastSeen   atomic.Int64

	mu   sync.Mutex
	cart *domain.Cart
	form domain.CheckoutFields
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// idle reports whether the session was last used more than timeout ago.
// A session with an order in flight is never idle.
func (s *Session) idle(now time.Time, timeout time.Duration) bool {
	if s.submitting.Load() {
		return false
	}
	return now.Sub(time.Unix(0, s.lastSeen.Load())) > timeout
}

func (s *Session) Add(ctx context.Context, product domain.Product) CartView {
	return s.mutate(ctx, func(c *domain.Cart) { c.Add(product) })
}

func (s *Session) Put(ctx context.Context, product domain.Product, qty int) CartView {
	return s.mutate(ctx, func(c *domain.Cart) { c.Put(product, qty) })
}

func (s *Session) SetQuantity(ctx context.Context, productID string, qty int) CartView {
	return s.mutate(ctx, func(c *domain.Cart) { c.SetQuantity(productID, qty) })
}

func (s *Session) Increment(ctx context.Context, productID string) CartView {
	return s.mutate(ctx, func(c *domain.Cart) { c.Increment(productID) })
}

func (s *Session) Decrement(ctx context.Context, productID string) CartView {
	return s.mutate(ctx, func(c *domain.Cart) { c.Decrement(productID) })
}

func (s *Session) Remove(ctx context.Context, productID string) CartView {
	return s.mutate(ctx, func(c *domain.Cart) { c.Remove(productID) })
}

func (s *Session) Clear(ctx context.Context) CartView {
	return s.mutate(ctx, func(c *domain.Cart) { c.Clear() })
}

func (s *Session) View() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewLocked()
}

func (s *Session) Form() domain.CheckoutFields {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.form
}

func (s *Session) Submitting() bool {
	return s.submitting.Load()
}

// Checkout submits the current cart. Only one submission per session may be in flight,
// a second call returns ErrSubmitInFlight. On success the ordered quantities leave the
// cart, units added while the order was in flight stay. The address and comment are
// reset; name and phone are kept for the next order.
func (s *Session) Checkout(ctx context.Context, fields domain.CheckoutFields, user domain.PlatformUser) (domain.OrderConfirmation, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return domain.OrderConfirmation{}, ErrSubmitInFlight
	}
	defer s.submitting.Store(false)

	s.mu.Lock()
	s.form = fields
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	confirmation, err := s.submitter.Submit(ctx, fields, snapshot, user)
	if err != nil {
		return domain.OrderConfirmation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.RemoveOrdered(snapshot.Items())
	s.persistLocked(ctx)
	s.form.Address = ""
	s.form.Comment = ""

	return confirmation, nil
}

func (s *Session) mutate(ctx context.Context, fn func(c *domain.Cart)) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.cart)
	s.persistLocked(ctx)

	return s.viewLocked()
}

func (s *Session) viewLocked() CartView {
	return CartView{
		Items:  s.cart.Items(),
		Count:  s.cart.Count(),
		Totals: s.submitter.Policy().Quote(s.cart),
	}
}

// persistLocked is best effort, the in-memory cart stays authoritative.
func (s *Session) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}

	if err := s.repo.ReplaceCart(ctx, s.id, s.cart.Items()); err != nil {
		s.logger.Warn("persist cart", zap.String("session_id", s.id), zap.Error(err))
	}
}

const DefaultSessionIdleTimeout = 30 * time.Minute

type SessionsOption func(*Sessions)

// WithIdleTimeout sets how long an unused session is kept.
func WithIdleTimeout(timeout time.Duration) SessionsOption {
	return func(m *Sessions) {
		if timeout > 0 {
			m.idleTimeout = timeout
		}
	}
}

func WithSessionClock(now func() time.Time) SessionsOption {
	return func(m *Sessions) {
		if now != nil {
			m.now = now
		}
	}
}

// Sessions creates, looks up and tears down sessions. Sessions unused for longer
// than the idle timeout are dropped; a persisted cart survives for the next Open.
type Sessions struct {
	submitter   *Submitter
	repo        port.CartRepository
	logger      *zap.Logger
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions wires sessions to the submitter. repo may be nil to keep carts in memory only.
func NewSessions(submitter *Submitter, repo port.CartRepository, logger *zap.Logger, opts ...SessionsOption) (*Sessions, error) {
	if submitter == nil {
		return nil, fmt.Errorf("submitter is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Sessions{
		submitter:   submitter,
		repo:        repo,
		logger:      logger,
		idleTimeout: DefaultSessionIdleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Open returns the live session with id or starts a new one, restoring a persisted cart.
// An empty id starts a session under a fresh random id.
func (m *Sessions) Open(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	if s, err := m.Get(id); err == nil {
		return s, nil
	}

	cart := domain.NewCart()
	if m.repo != nil {
		entries, err := m.repo.GetCart(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("repo.GetCart: %w", err)
		}
		for _, entry := range entries {
			cart.Put(entry.Product, entry.Quantity)
		}
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	// another request may have opened the same id while the cart was loading
	if s, ok := m.sessions[id]; ok && !s.idle(now, m.idleTimeout) {
		s.touch(now)
		return s, nil
	}

	s := &Session{
		id:        id,
		submitter: m.submitter,
		repo:      m.repo,
		logger:    m.logger,
		cart:      cart,
	}
	s.touch(now)
	m.sessions[id] = s

	m.logger.Debug("session opened", zap.String("session_id", id), zap.Int("restored_items", cart.Len()))

	return s, nil
}

// Get returns a live session and marks it as used. An idle session is not found.
func (m *Sessions) Get(id string) (*Session, error) {
	now := m.now()

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || s.idle(now, m.idleTimeout) {
		return nil, ErrSessionNotFound
	}

	s.touch(now)
	return s, nil
}

// Close ends the session. A persisted cart is kept for the next Open with the same id.
func (m *Sessions) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)

	m.logger.Debug("session closed", zap.String("session_id", id))

	return true
}

// EvictIdle drops every idle session and returns how many were dropped.
func (m *Sessions) EvictIdle() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.idle(now, m.idleTimeout) {
			delete(m.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.Debug("idle sessions evicted", zap.Int("count", evicted), zap.Int("remaining", len(m.sessions)))
	}

	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (m *Sessions) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
