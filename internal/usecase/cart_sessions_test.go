package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSessionCartsStartEmptyAndAreIsolated(t *testing.T) {
	carts := NewSessionCarts(time.Hour, nil, nil, logger.NewNop())
	ctx := context.Background()

	a := carts.Get(ctx, "session-a")
	b := carts.Get(ctx, "session-b")
	require.NotSame(t, a, b)
	assert.Empty(t, a.Items())

	a.AddToCart(product("p1", "5"))

	assert.Same(t, a, carts.Get(ctx, "session-a"))
	assert.Len(t, carts.Get(ctx, "session-a").Items(), 1)
	assert.Empty(t, b.Items())
	assert.Equal(t, 2, carts.Len())
}

func TestSessionCartsPersistAndRestore(t *testing.T) {
	snapshots := newFakeSnapshots()
	events := &fakeCartEvents{}
	ctx := context.Background()

	carts := NewSessionCarts(time.Hour, snapshots, events, logger.NewNop())
	store := carts.Get(ctx, "sid")
	store.AddToCart(product("p1", "2.50"))
	store.AddToCart(product("p1", "2.50"))

	require.Contains(t, snapshots.states, "sid")
	assert.Equal(t, 2, snapshots.states["sid"].Items[0].Quantity)
	require.Len(t, events.published, 2)
	assert.Equal(t, "sid", events.published[1].sessionID)
	assert.Equal(t, "5.00", events.published[1].state.TotalPrice().StringFixed(2))

	// процесс перезапустился: новая карта сессий, тот же Redis
	restarted := NewSessionCarts(time.Hour, snapshots, nil, logger.NewNop())
	restored := restarted.Get(ctx, "sid")
	items := restored.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, uint64(2), restored.State().Version)
}

func TestSessionCartsSnapshotErrorsDoNotFailCart(t *testing.T) {
	snapshots := newFakeSnapshots()
	snapshots.loadErr = errors.New("redis down")
	snapshots.saveErr = errors.New("redis down")

	carts := NewSessionCarts(time.Hour, snapshots, nil, logger.NewNop())
	store := carts.Get(context.Background(), "sid")
	store.AddToCart(product("p1", "1"))

	assert.Len(t, store.Items(), 1)
	assert.Equal(t, 1, snapshots.saves)
}

func TestSessionCartsSweepEvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snapshots := newFakeSnapshots()
	carts := NewSessionCarts(30*time.Minute, snapshots, nil, logger.NewNop())
	carts.now = func() time.Time { return now }

	ctx := context.Background()
	old := carts.Get(ctx, "old")
	carts.Get(ctx, "fresh")

	now = now.Add(20 * time.Minute)
	carts.Get(ctx, "fresh")

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, carts.Sweep())
	assert.Equal(t, 1, carts.Len())

	// выселенная корзина больше не пишет снимки
	old.AddToCart(product("p1", "1"))
	assert.Equal(t, 0, snapshots.saves)
}

func TestSessionCartsSweepKeepsWatchedSession(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	carts := NewSessionCarts(30*time.Minute, newFakeSnapshots(), &fakeCartEvents{}, logger.NewNop())
	carts.now = func() time.Time { return now }

	ctx := context.Background()
	store := carts.Get(ctx, "sid")

	var received []domain.CartState
	unsubscribe := store.Subscribe(func(state domain.CartState) { received = append(received, state) })

	now = now.Add(time.Hour)
	assert.Equal(t, 0, carts.Sweep())
	require.Same(t, store, carts.Get(ctx, "sid"))

	carts.Get(ctx, "sid").AddToCart(product("p1", "1"))
	require.Len(t, received, 1)

	// поток закрылся: после ttl без запросов сессия выселяется
	unsubscribe()
	now = now.Add(time.Hour)
	assert.Equal(t, 1, carts.Sweep())
	assert.Equal(t, 0, carts.Len())
}

func TestSessionCartsDropDeletesSnapshot(t *testing.T) {
	snapshots := newFakeSnapshots()
	carts := NewSessionCarts(time.Hour, snapshots, nil, logger.NewNop())
	ctx := context.Background()

	carts.Get(ctx, "sid").AddToCart(product("p1", "1"))
	require.Contains(t, snapshots.states, "sid")

	carts.Drop(ctx, "sid")

	assert.NotContains(t, snapshots.states, "sid")
	assert.Equal(t, 0, carts.Len())
	assert.Empty(t, carts.Get(ctx, "sid").Items())
}

func TestSessionCartsRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	carts := NewSessionCarts(time.Millisecond, nil, nil, logger.NewNop())
	carts.Get(context.Background(), "sid")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		carts.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return carts.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestCartStateRoundTripThroughListener(t *testing.T) {
	carts := NewSessionCarts(time.Hour, nil, nil, logger.NewNop())
	store := carts.Get(context.Background(), "sid")

	var last domain.CartState
	unsubscribe := store.Subscribe(func(s domain.CartState) { last = s })
	defer unsubscribe()

	store.AddToCart(product("p1", "1"))
	assert.Equal(t, store.State(), last)
}
