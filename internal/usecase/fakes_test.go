package usecase

import (
	"context"
	"sync"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

type fakeSnapshots struct {
	mu      sync.Mutex
	states  map[string]domain.CartState
	saves   int
	loadErr error
	saveErr error
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{states: make(map[string]domain.CartState)}
}

func (f *fakeSnapshots) Load(_ context.Context, sid string) (*domain.CartState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}
	state, ok := f.states[sid]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (f *fakeSnapshots) Save(_ context.Context, sid string, state domain.CartState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.states[sid] = state
	return nil
}

func (f *fakeSnapshots) Delete(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.states, sid)
	return nil
}

type publishedCart struct {
	sessionID string
	state     domain.CartState
}

type fakeCartEvents struct {
	mu        sync.Mutex
	published []publishedCart
}

func (f *fakeCartEvents) PublishCartUpdated(_ context.Context, sid string, state domain.CartState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.published = append(f.published, publishedCart{sessionID: sid, state: state})
	return nil
}

// fakeCatalog — каталог в памяти; считает обращения.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]domain.Product
	order    []string
	err      error
	calls    int
	// block, если задан, задерживает ответ FetchProduct до закрытия канала
	block map[string]chan struct{}
}

func newFakeCatalog(products ...domain.Product) *fakeCatalog {
	f := &fakeCatalog{products: make(map[string]domain.Product), block: make(map[string]chan struct{})}
	for _, p := range products {
		f.products[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakeCatalog) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	f.calls++
	wait := f.block[id]
	err := f.err
	p, ok := f.products[id]
	f.mu.Unlock()

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, e.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) FetchProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	res := make([]domain.Product, 0)
	for _, id := range f.order {
		p := f.products[id]
		if p.Matches(filter) {
			res = append(res, p)
		}
	}
	return res, nil
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProductCache struct {
	mu       sync.Mutex
	products map[string]domain.Product
	catalog  []domain.Product
	hasList  bool
	err      error
	deleted  []string
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{products: make(map[string]domain.Product)}
}

func (f *fakeProductCache) GetProducts(_ context.Context, ids []string) (map[string]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	res := make(map[string]domain.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			res[id] = p
		}
	}
	return res, nil
}

func (f *fakeProductCache) SetProducts(_ context.Context, products []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range products {
		f.products[p.ID] = p
	}
	return nil
}

func (f *fakeProductCache) DeleteProducts(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range ids {
		delete(f.products, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

func (f *fakeProductCache) GetCatalog(context.Context) ([]domain.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, false, f.err
	}
	return f.catalog, f.hasList, nil
}

func (f *fakeProductCache) SetCatalog(_ context.Context, products []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.catalog = products
	f.hasList = true
	return nil
}

func (f *fakeProductCache) DeleteCatalog(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.catalog = nil
	f.hasList = false
	return nil
}
