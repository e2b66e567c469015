package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// persistTimeout ограничивает сохранение снимка и публикацию события на одну мутацию.
const persistTimeout = 500 * time.Millisecond

type cartSession struct {
	store        *CartStore
	lastSeen     time.Time
	unsubscribes []func()
}

// SessionCarts хранит корзины сессий: корзина создаётся пустой при первом обращении
// и удаляется, когда сессия простаивает дольше ttl.
type SessionCarts struct {
	mu       sync.Mutex
	sessions map[string]*cartSession

	ttl       time.Duration
	snapshots CartSnapshotRepository // может быть nil
	events    CartEventPublisher     // может быть nil
	logger    logger.Logger
	now       func() time.Time
}

func NewSessionCarts(
	ttl time.Duration,
	snapshots CartSnapshotRepository,
	events CartEventPublisher,
	logger logger.Logger,
) *SessionCarts {
	return &SessionCarts{
		sessions:  make(map[string]*cartSession),
		ttl:       ttl,
		snapshots: snapshots,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Get возвращает корзину сессии, создавая (или восстанавливая из снимка) её при необходимости.
func (c *SessionCarts) Get(ctx context.Context, sessionID string) *CartStore {
	if store := c.touch(sessionID); store != nil {
		return store
	}

	restored := c.loadSnapshot(ctx, sessionID)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Пока читали снимок, корзину мог создать параллельный запрос той же сессии.
	if s, ok := c.sessions[sessionID]; ok {
		s.lastSeen = c.now()
		return s.store
	}

	store := NewCartStore()
	if restored != nil {
		store.restore(*restored)
	}

	s := &cartSession{store: store, lastSeen: c.now()}
	s.unsubscribes = c.attach(sessionID, store)
	c.sessions[sessionID] = s

	return store
}

// Drop завершает сессию: корзина и её снимок удаляются.
func (c *SessionCarts) Drop(ctx context.Context, sessionID string) {
	const op = "SessionCarts.Drop"

	c.mu.Lock()
	s, ok := c.sessions[sessionID]
	delete(c.sessions, sessionID)
	c.mu.Unlock()

	if ok {
		s.detach()
	}

	if c.snapshots != nil {
		if err := c.snapshots.Delete(ctx, sessionID); err != nil {
			c.logger.Warnf("failed to delete cart snapshot: %v", e.Wrap(op, err))
		}
	}
}

// Sweep удаляет из памяти сессии, простаивающие дольше ttl. Возвращает число удалённых.
// Сессия с открытым потоком событий не простаивает, даже если запросов давно не было.
func (c *SessionCarts) Sweep() int {
	deadline := c.now().Add(-c.ttl)

	c.mu.Lock()
	expired := make([]*cartSession, 0)
	for id, s := range c.sessions {
		if s.watched() {
			s.lastSeen = c.now()
			continue
		}
		if s.lastSeen.Before(deadline) {
			expired = append(expired, s)
			delete(c.sessions, id)
		}
	}
	c.mu.Unlock()

	for _, s := range expired {
		s.detach()
	}

	return len(expired)
}

// Run периодически вызывает Sweep до отмены контекста.
func (c *SessionCarts) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debugf("evicted %d idle cart sessions", n)
			}
		}
	}
}

// Len возвращает количество активных сессий.
func (c *SessionCarts) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.sessions)
}

func (c *SessionCarts) touch(sessionID string) *CartStore {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return nil
	}

	s.lastSeen = c.now()
	return s.store
}

func (c *SessionCarts) loadSnapshot(ctx context.Context, sessionID string) *domain.CartState {
	const op = "SessionCarts.loadSnapshot"

	if c.snapshots == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	state, err := c.snapshots.Load(ctx, sessionID)
	if err != nil {
		c.logger.Warnf("failed to restore cart, starting empty: %v", e.Wrap(op, err))
		return nil
	}

	return state
}

// attach подписывает на корзину сохранение снимков и публикацию событий.
// Ошибки только логируются: операции корзины не падают.
func (c *SessionCarts) attach(sessionID string, store *CartStore) []func() {
	const op = "SessionCarts.attach"

	var unsubscribes []func()

	if c.snapshots != nil {
		unsubscribes = append(unsubscribes, store.Subscribe(func(state domain.CartState) {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()

			if err := c.snapshots.Save(ctx, sessionID, state); err != nil {
				c.logger.Warnf("failed to save cart snapshot: %v", e.Wrap(op, err))
			}
		}))
	}

	if c.events != nil {
		unsubscribes = append(unsubscribes, store.Subscribe(func(state domain.CartState) {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()

			if err := c.events.PublishCartUpdated(ctx, sessionID, state); err != nil {
				c.logger.Warnf("failed to publish cart event: %v", e.Wrap(op, err))
			}
		}))
	}

	return unsubscribes
}

// watched сообщает, есть ли у корзины слушатели кроме собственных подписок сессии.
func (s *cartSession) watched() bool {
	return s.store.subscribers() > len(s.unsubscribes)
}

func (s *cartSession) detach() {
	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
}
