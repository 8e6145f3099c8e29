package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-api/internal/domain/entity"
	"github.com/sangkips/storefront-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartStore_MutationsAreMirrored(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	s := NewCartStore(ctx, "sess", mirror)
	mug := newProduct("mug", "25.00", 10)

	_, err := s.AddItem(ctx, mug.Snapshot(), 1)
	require.NoError(t, err)
	cart, err := s.AddItem(ctx, mug.Snapshot(), 2)
	require.NoError(t, err)

	assert.Equal(t, 3, cart.ItemCount())
	assert.Equal(t, "75.00", entity.FormatAmount(s.Subtotal()))
	assert.Equal(t, "9.75", entity.FormatAmount(s.TaxAmount()))
	assert.Equal(t, "84.75", entity.FormatAmount(s.Total()))

	data, ok := mirror.entry("sess")
	require.True(t, ok)
	restored, err := entity.RestoreCart(data)
	require.NoError(t, err)
	assert.Equal(t, s.Lines(), restored.Lines())
}

func TestCartStore_RestoresFromMirror(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	mug := newProduct("mug", "25.00", 10)

	first := NewCartStore(ctx, "sess", mirror)
	_, err := first.AddItem(ctx, mug.Snapshot(), 4)
	require.NoError(t, err)

	second := NewCartStore(ctx, "sess", mirror)
	assert.Equal(t, first.Lines(), second.Lines())
	assert.Equal(t, 4, second.ItemCount())
}

func TestCartStore_RestoreDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("corrupt entry", func(t *testing.T) {
		mirror := newMemMirror()
		mirror.entries["sess"] = []byte(`{"not":"a cart"`)
		s := NewCartStore(ctx, "sess", mirror)
		assert.True(t, s.Snapshot().IsEmpty())
	})

	t.Run("mirror unavailable", func(t *testing.T) {
		mirror := newMemMirror()
		mirror.loadErr = errBoom
		s := NewCartStore(ctx, "sess", mirror)
		assert.True(t, s.Snapshot().IsEmpty())
	})
}

func TestCartStore_InsufficientStockLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	s := NewCartStore(ctx, "sess", mirror)
	lamp := newProduct("lamp", "39.90", 2)

	_, err := s.AddItem(ctx, lamp.Snapshot(), 2)
	require.NoError(t, err)
	saves := mirror.saveCount()

	_, err = s.UpdateQuantity(ctx, lamp.ID, 5)
	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	line, ok := s.Snapshot().Line(lamp.ID)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, saves, mirror.saveCount())
}

func TestCartStore_FailedMirrorWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	s := NewCartStore(ctx, "sess", mirror)
	mug := newProduct("mug", "25.00", 10)

	_, err := s.AddItem(ctx, mug.Snapshot(), 1)
	require.NoError(t, err)

	mirror.saveErr = errBoom
	cart, err := s.AddItem(ctx, mug.Snapshot(), 1)

	var persistErr *CartPersistError
	require.ErrorAs(t, err, &persistErr)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, cart.ItemCount())
	assert.Equal(t, 1, s.ItemCount())
}

func TestCartStore_RemoveAbsentDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	s := NewCartStore(ctx, "sess", mirror)
	mug := newProduct("mug", "25.00", 10)

	_, err := s.AddItem(ctx, mug.Snapshot(), 1)
	require.NoError(t, err)
	saves := mirror.saveCount()
	before, _ := mirror.entry("sess")

	_, err = s.RemoveItem(ctx, uuid.New())
	require.NoError(t, err)
	_, err = s.UpdateQuantity(ctx, uuid.New(), 3)
	require.NoError(t, err)

	after, _ := mirror.entry("sess")
	assert.Equal(t, saves, mirror.saveCount())
	assert.Equal(t, before, after)
}

func TestCartStore_UpdateBelowOneRemoves(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(ctx, "sess", newMemMirror())
	mug := newProduct("mug", "25.00", 10)

	_, err := s.AddItem(ctx, mug.Snapshot(), 2)
	require.NoError(t, err)

	cart, err := s.UpdateQuantity(ctx, mug.ID, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartStore_Clear(t *testing.T) {
	ctx := context.Background()
	mug := newProduct("mug", "25.00", 10)

	t.Run("deletes the mirror entry", func(t *testing.T) {
		mirror := newMemMirror()
		s := NewCartStore(ctx, "sess", mirror)
		_, err := s.AddItem(ctx, mug.Snapshot(), 1)
		require.NoError(t, err)

		require.NoError(t, s.Clear(ctx))
		assert.True(t, s.Snapshot().IsEmpty())
		_, ok := mirror.entry("sess")
		assert.False(t, ok)
	})

	t.Run("falls back to an empty entry", func(t *testing.T) {
		mirror := newMemMirror()
		s := NewCartStore(ctx, "sess", mirror)
		_, err := s.AddItem(ctx, mug.Snapshot(), 1)
		require.NoError(t, err)

		mirror.deleteErr = errBoom
		require.NoError(t, s.Clear(ctx))
		data, ok := mirror.entry("sess")
		require.True(t, ok)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("reports when nothing could be written", func(t *testing.T) {
		mirror := newMemMirror()
		s := NewCartStore(ctx, "sess", mirror)
		_, err := s.AddItem(ctx, mug.Snapshot(), 1)
		require.NoError(t, err)

		mirror.deleteErr = errBoom
		mirror.saveErr = errBoom
		assert.Error(t, s.Clear(ctx))
		assert.True(t, s.Snapshot().IsEmpty())
	})
}

func TestCartStore_ClearOrdered(t *testing.T) {
	ctx := context.Background()
	mug := newProduct("mug", "25.00", 10)
	lamp := newProduct("lamp", "39.90", 3)

	t.Run("unchanged cart is cleared", func(t *testing.T) {
		mirror := newMemMirror()
		s := NewCartStore(ctx, "sess", mirror)
		_, err := s.AddItem(ctx, mug.Snapshot(), 2)
		require.NoError(t, err)

		require.NoError(t, s.ClearOrdered(ctx, s.Snapshot()))
		assert.True(t, s.Snapshot().IsEmpty())
		_, ok := mirror.entry("sess")
		assert.False(t, ok)
	})

	t.Run("later additions survive", func(t *testing.T) {
		mirror := newMemMirror()
		s := NewCartStore(ctx, "sess", mirror)
		_, err := s.AddItem(ctx, mug.Snapshot(), 2)
		require.NoError(t, err)
		ordered := s.Snapshot()

		_, err = s.AddItem(ctx, lamp.Snapshot(), 1)
		require.NoError(t, err)

		require.NoError(t, s.ClearOrdered(ctx, ordered))
		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, lamp.ID, lines[0].ProductID)

		data, ok := mirror.entry("sess")
		require.True(t, ok)
		restored, err := entity.RestoreCart(data)
		require.NoError(t, err)
		assert.Equal(t, lines, restored.Lines())
	})
}

func TestCartStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := NewCartStore(ctx, "sess", newMemMirror())
	notebook := newProduct("notebook", "4.99", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddItem(ctx, notebook.Snapshot(), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.ItemCount())
}

func TestCartService_StoreReusesSession(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	svc := NewCartService(mirror, newFakeProductRepo(), time.Hour)

	a, err := svc.Store(ctx, "sess")
	require.NoError(t, err)
	b, err := svc.Store(ctx, " sess ")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, mirror.loadCalled)

	_, err = svc.Store(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCartService_ConcurrentFirstAccessRestoresOnce(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	svc := NewCartService(mirror, newFakeProductRepo(), time.Hour)

	stores := make([]*CartStore, 20)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := svc.Store(ctx, "sess")
			if err == nil {
				stores[i] = s
			}
		}(i)
	}
	wg.Wait()

	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
	assert.Equal(t, 1, svc.Len())
}

func TestCartService_AddProduct(t *testing.T) {
	ctx := context.Background()
	mug := newProduct("mug", "25.00", 10)
	retired := newProduct("retired", "5.00", 10)
	retired.IsActive = false
	svc := NewCartService(newMemMirror(), newFakeProductRepo(mug, retired), time.Hour)

	cart, err := svc.AddProduct(ctx, "sess", mug.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount())

	_, err = svc.AddProduct(ctx, "sess", retired.ID, 1)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	_, err = svc.AddProduct(ctx, "sess", uuid.New(), 1)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	_, err = svc.AddProduct(ctx, "sess", mug.ID, 9)
	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10, stockErr.Available)
}

func TestCartService_CleanupDropsIdleStores(t *testing.T) {
	ctx := context.Background()
	mirror := newMemMirror()
	mug := newProduct("mug", "25.00", 10)
	svc := NewCartService(mirror, newFakeProductRepo(mug), time.Millisecond)

	_, err := svc.AddProduct(ctx, "sess", mug.ID, 1)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	svc.Cleanup()
	assert.Equal(t, 0, svc.Len())

	// the cart comes back from the mirror
	s, err := svc.Store(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, 1, s.ItemCount())
}
