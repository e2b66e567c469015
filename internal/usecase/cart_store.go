package usecase

import (
	"sync"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// CartListener получает снимок корзины после каждой изменившей её операции.
// Слушатель может читать корзину, но не должен синхронно её изменять.
type CartListener func(state domain.CartState)

// CartStore — единственный источник правды о корзине одной сессии.
// Все мутации сериализуются мьютексом: на каждый id товара ровно одна строка.
type CartStore struct {
	mu      sync.Mutex
	items   []domain.CartLineItem
	version uint64

	// notifyMu захватывается до освобождения mu, поэтому слушатели
	// получают снимки в том же порядке, в котором применялись мутации.
	notifyMu sync.Mutex

	subsMu    sync.RWMutex
	subs      map[uint64]CartListener
	nextSubID uint64
}

func NewCartStore() *CartStore {
	return &CartStore{
		items: make([]domain.CartLineItem, 0),
		subs:  make(map[uint64]CartListener),
	}
}

// AddToCart добавляет товар в конец корзины с количеством 1,
// а если строка с таким id уже есть — увеличивает её количество на 1.
func (s *CartStore) AddToCart(product domain.Product) {
	s.mutate(func() bool {
		if i := s.indexLocked(product.ID); i >= 0 {
			s.items[i].Quantity++
			return true
		}

		s.items = append(s.items, domain.NewCartLineItem(product))
		return true
	})
}

// UpdateQuantity заменяет количество строки. quantity <= 0 удаляет строку.
// Неизвестный id игнорируется.
func (s *CartStore) UpdateQuantity(id string, quantity int) {
	s.updateQuantityFunc(id, func(int) int { return quantity })
}

// updateQuantityFunc вычисляет новое количество строки из текущего под той же блокировкой.
// Правила те же, что у UpdateQuantity.
func (s *CartStore) updateQuantityFunc(id string, fn func(current int) int) {
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}

		quantity := fn(s.items[i].Quantity)
		if quantity <= 0 {
			s.removeLocked(i)
			return true
		}

		if s.items[i].Quantity == quantity {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

// RemoveFromCart удаляет строку, если она есть.
func (s *CartStore) RemoveFromCart(id string) {
	s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}

		s.removeLocked(i)
		return true
	})
}

// ClearCart очищает корзину.
func (s *CartStore) ClearCart() {
	s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}

		s.items = make([]domain.CartLineItem, 0)
		return true
	})
}

// Items возвращает копию строк корзины в порядке добавления.
func (s *CartStore) Items() []domain.CartLineItem {
	return s.State().Items
}

// TotalPrice пересчитывается из строк при каждом чтении.
func (s *CartStore) TotalPrice() decimal.Decimal {
	return s.State().TotalPrice()
}

// State возвращает снимок корзины.
func (s *CartStore) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subscribe регистрирует слушателя. Возвращённая функция отписывает его; повторный вызов безопасен.
func (s *CartStore) Subscribe(l CartListener) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = l
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// restore подменяет содержимое корзины снимком без уведомления слушателей.
// Используется только при восстановлении сессии, до того как корзина стала доступна.
func (s *CartStore) restore(state domain.CartState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartLineItem, 0, len(state.Items))
	for _, it := range state.Items {
		if it.ID == "" || it.Quantity <= 0 || s.indexIn(items, it.ID) >= 0 {
			continue
		}
		items = append(items, it)
	}

	s.items = items
	s.version = state.Version
}

// mutate применяет fn под блокировкой и, если fn изменила корзину, уведомляет слушателей.
func (s *CartStore) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}

	s.version++
	state := s.snapshotLocked()

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range s.listeners() {
		l(state)
	}
}

func (s *CartStore) subscribers() int {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	return len(s.subs)
}

func (s *CartStore) listeners() []CartListener {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	res := make([]CartListener, 0, len(s.subs))
	for _, l := range s.subs {
		res = append(res, l)
	}
	return res
}

func (s *CartStore) snapshotLocked() domain.CartState {
	items := make([]domain.CartLineItem, len(s.items))
	copy(items, s.items)

	return domain.CartState{Items: items, Version: s.version}
}

func (s *CartStore) indexLocked(id string) int {
	return s.indexIn(s.items, id)
}

func (s *CartStore) indexIn(items []domain.CartLineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CartStore) removeLocked(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}
