package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CartStore owns one session's cart and its durable mirror. A mutation is
// visible only after the mirror has been rewritten, so memory never runs
// ahead of what survives a restart.
type CartStore struct {
	mu      sync.Mutex
	session string
	mirror  repository.CartMirror
	cart    entity.Cart
}

// NewCartStore creates a store for session and restores it from the mirror
func NewCartStore(ctx context.Context, session string, mirror repository.CartMirror) *CartStore {
	s := &CartStore{session: session, mirror: mirror}
	s.restore(ctx)
	return s
}

// restore loads the mirror. Anything unreadable degrades to an empty cart.
func (s *CartStore) restore(ctx context.Context) {
	data, err := s.mirror.Load(ctx, s.session)
	if errors.Is(err, repository.ErrMirrorMiss) {
		return
	}
	if err != nil {
		slog.Warn("cart mirror unavailable, starting empty", "session", s.session, "error", err)
		return
	}

	cart, err := entity.RestoreCart(data)
	if err != nil {
		slog.Warn("discarding unreadable cart mirror", "session", s.session, "error", err)
		return
	}
	s.cart = cart
}

// CartPersistError is returned when the mirror could not be rewritten. The
// cart is left as it was before the mutation.
type CartPersistError struct {
	Session string
	Err     error
}

func (e *CartPersistError) Error() string {
	return fmt.Sprintf("failed to persist cart %s: %v", e.Session, e.Err)
}

func (e *CartPersistError) Unwrap() error {
	return e.Err
}

// commit persists next and only then makes it current. Callers hold mu.
func (s *CartStore) commit(ctx context.Context, next entity.Cart) error {
	data, err := next.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize cart: %w", err)
	}
	if err := s.mirror.Save(ctx, s.session, data); err != nil {
		slog.Error("cart mirror write failed", "session", s.session, "error", err)
		return &CartPersistError{Session: s.session, Err: err}
	}
	s.cart = next
	return nil
}

// AddItem adds quantity units of product, merging with an existing line
func (s *CartStore) AddItem(ctx context.Context, product entity.ProductSnapshot, quantity int) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.cart.AddItem(product, quantity)
	if err != nil {
		return s.cart, err
	}
	if err := s.commit(ctx, next); err != nil {
		return s.cart, err
	}
	return s.cart, nil
}

// UpdateQuantity sets a line's quantity; below one removes the line
func (s *CartStore) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cart.Line(productID); !ok {
		return s.cart, nil
	}

	next, err := s.cart.UpdateQuantity(productID, quantity)
	if err != nil {
		return s.cart, err
	}
	if err := s.commit(ctx, next); err != nil {
		return s.cart, err
	}
	return s.cart, nil
}

// RemoveItem drops a line. Removing an absent product touches nothing.
func (s *CartStore) RemoveItem(ctx context.Context, productID uuid.UUID) (entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cart.Line(productID); !ok {
		return s.cart, nil
	}
	if err := s.commit(ctx, s.cart.RemoveItem(productID)); err != nil {
		return s.cart, err
	}
	return s.cart, nil
}

// Clear empties the cart and erases the mirror entry. If the entry cannot be
// erased an empty cart is written over it instead. The in-memory cart is
// emptied either way and any remaining mirror error is returned.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// ClearOrdered removes what was checked out from the cart. When nothing was
// added since ordered was taken the cart is cleared; otherwise only the
// ordered quantities are subtracted and the rest stays in the cart.
func (s *CartStore) ClearOrdered(ctx context.Context, ordered entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.cart.Subtract(ordered)
	if remaining.IsEmpty() {
		return s.clearLocked(ctx)
	}
	slog.Info("cart changed during checkout, keeping unordered items",
		"session", s.session, "remaining_items", remaining.ItemCount())
	return s.commit(ctx, remaining)
}

func (s *CartStore) clearLocked(ctx context.Context) error {
	s.cart = s.cart.Clear()

	err := s.mirror.Delete(ctx, s.session)
	if err == nil {
		return nil
	}
	if saveErr := s.mirror.Save(ctx, s.session, []byte("[]")); saveErr != nil {
		return fmt.Errorf("failed to erase cart mirror: %w", errors.Join(err, saveErr))
	}
	return nil
}

func (s *CartStore) Session() string {
	return s.session
}

// Snapshot returns the current immutable cart
func (s *CartStore) Snapshot() entity.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *CartStore) Lines() []entity.CartLine {
	return s.Snapshot().Lines()
}

func (s *CartStore) Subtotal() decimal.Decimal {
	return s.Snapshot().Subtotal()
}

func (s *CartStore) TaxAmount() decimal.Decimal {
	return s.Snapshot().TaxAmount()
}

func (s *CartStore) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

func (s *CartStore) ItemCount() int {
	return s.Snapshot().ItemCount()
}
