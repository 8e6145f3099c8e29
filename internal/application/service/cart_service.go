package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/internal/domain/repository"
	"github.com/sangkips/storefront-api/pkg/apperror"
	"golang.org/x/sync/singleflight"
)

// ErrNoSession is returned when a cart is requested without a session key
var ErrNoSession = apperror.NewBadRequestError("Missing cart session")

type cartEntry struct {
	store    *CartStore
	lastSeen time.Time
}

// CartService keeps one CartStore per session
type CartService struct {
	mirror      repository.CartMirror
	productRepo repository.ProductRepository

	mu     sync.Mutex
	stores map[string]*cartEntry
	group  singleflight.Group

	idleTimeout time.Duration
}

// NewCartService creates a new cart service. Stores unused for idleTimeout are
// dropped from memory by Cleanup; their mirror entries stay.
func NewCartService(mirror repository.CartMirror, productRepo repository.ProductRepository, idleTimeout time.Duration) *CartService {
	return &CartService{
		mirror:      mirror,
		productRepo: productRepo,
		stores:      make(map[string]*cartEntry),
		idleTimeout: idleTimeout,
	}
}

// Store returns the cart store for session, restoring it on first access
func (s *CartService) Store(ctx context.Context, session string) (*CartStore, error) {
	session = strings.TrimSpace(session)
	if session == "" {
		return nil, ErrNoSession
	}

	if store := s.lookup(session); store != nil {
		return store, nil
	}

	v, _, _ := s.group.Do(session, func() (interface{}, error) {
		if store := s.lookup(session); store != nil {
			return store, nil
		}
		store := NewCartStore(context.WithoutCancel(ctx), session, s.mirror)

		s.mu.Lock()
		s.stores[session] = &cartEntry{store: store, lastSeen: time.Now()}
		s.mu.Unlock()
		return store, nil
	})
	return v.(*CartStore), nil
}

func (s *CartService) lookup(session string) *CartStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.stores[session]
	if !ok {
		return nil
	}
	entry.lastSeen = time.Now()
	return entry.store
}

// AddProduct looks the product up and adds it to the session's cart
func (s *CartService) AddProduct(ctx context.Context, session string, productID uuid.UUID, quantity int) (entity.Cart, error) {
	store, err := s.Store(ctx, session)
	if err != nil {
		return entity.Cart{}, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return store.Snapshot(), err
	}
	if product == nil || !product.IsActive {
		return store.Snapshot(), apperror.NewNotFoundError("Product")
	}

	return store.AddItem(ctx, product.Snapshot(), quantity)
}

// Cleanup drops idle stores from memory
func (s *CartService) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for session, entry := range s.stores {
		if time.Since(entry.lastSeen) > s.idleTimeout {
			delete(s.stores, session)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done
func (s *CartService) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Len reports how many stores are held in memory
func (s *CartService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
