package usecase

import (
	"context"
	"sync"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type DetailState string

const (
	DetailLoading  DetailState = "loading"
	DetailReady    DetailState = "ready"
	DetailNotFound DetailState = "not_found"
)

type DetailTab string

const (
	TabDescription DetailTab = "description"
	TabUsage       DetailTab = "usage"
	TabReviews     DetailTab = "reviews"
)

const (
	noDescriptionText = "No detailed description available."
	noUsageText       = "Usage instructions not available."
	reviewsStubText   = "Reviews coming soon..."
)

// ParseDetailTab возвращает вкладку по имени; false, если такой вкладки нет.
func ParseDetailTab(s string) (DetailTab, bool) {
	switch t := DetailTab(s); t {
	case TabDescription, TabUsage, TabReviews:
		return t, true
	default:
		return "", false
	}
}

// DetailSnapshot — то, что отрисовывает страница товара.
type DetailSnapshot struct {
	State      DetailState
	Product    *domain.Product
	Image      string
	Quantity   int
	Tab        DetailTab
	TabContent string
}

// ProductDetailView — состояние страницы товара: loading → ready | not_found.
// Ответ загрузки, пришедший после новой Load, отбрасывается.
type ProductDetailView struct {
	catalog CatalogUC
	cart    *CartStore
	logger  logger.Logger

	mu         sync.Mutex
	generation uint64
	state      DetailState
	product    *domain.Product
	quantity   int
	tab        DetailTab
}

func NewProductDetailView(catalog CatalogUC, cart *CartStore, logger logger.Logger) *ProductDetailView {
	return &ProductDetailView{
		catalog:  catalog,
		cart:     cart,
		logger:   logger,
		state:    DetailLoading,
		quantity: 1,
		tab:      TabDescription,
	}
}

// Load начинает асинхронную загрузку товара и сбрасывает локальное состояние страницы.
// Возвращаемый канал закрывается, когда загрузка завершена (или её результат отброшен).
func (v *ProductDetailView) Load(ctx context.Context, id string) <-chan struct{} {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.state = DetailLoading
	v.product = nil
	v.quantity = 1
	v.tab = TabDescription
	v.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)

		product, err := v.catalog.FetchProduct(ctx, id)
		v.complete(gen, id, product, err)
	}()

	return done
}

func (v *ProductDetailView) complete(gen uint64, id string, product *domain.Product, err error) {
	const op = "ProductDetailView.complete"

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		v.logger.Debugf("discarding stale product load %q", id)
		return
	}

	if err != nil || product == nil || product.ID == "" {
		if err != nil {
			v.logger.Warnf("product %q is not available: %v", id, e.Wrap(op, err))
		}
		v.state = DetailNotFound
		return
	}

	v.state = DetailReady
	v.product = product
}

// Increment увеличивает выбранное количество на 1.
func (v *ProductDetailView) Increment() bool {
	return v.withReady(func() { v.quantity++ })
}

// Decrement уменьшает выбранное количество, не опускаясь ниже 1.
func (v *ProductDetailView) Decrement() bool {
	return v.withReady(func() {
		if v.quantity > 1 {
			v.quantity--
		}
	})
}

// SetQuantity задаёт количество; значения меньше 1 приводятся к 1.
func (v *ProductDetailView) SetQuantity(q int) bool {
	return v.withReady(func() { v.quantity = max(q, 1) })
}

func (v *ProductDetailView) SelectTab(tab DetailTab) bool {
	if _, ok := ParseDetailTab(string(tab)); !ok {
		return false
	}
	return v.withReady(func() { v.tab = tab })
}

// AddToCart добавляет товар в корзину столько раз, сколько выбрано.
// Работает только в состоянии ready.
func (v *ProductDetailView) AddToCart() bool {
	v.mu.Lock()
	if v.state != DetailReady || v.cart == nil {
		v.mu.Unlock()
		return false
	}
	product := *v.product
	quantity := v.quantity
	v.mu.Unlock()

	for range quantity {
		v.cart.AddToCart(product)
	}

	return true
}

func (v *ProductDetailView) Snapshot() DetailSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := DetailSnapshot{
		State:    v.state,
		Quantity: v.quantity,
		Tab:      v.tab,
	}

	if v.state != DetailReady {
		return snap
	}

	p := *v.product
	snap.Product = &p
	snap.Image = domain.ImageOrDefault(p.Image, domain.ImageWidthDetail)

	switch v.tab {
	case TabUsage:
		snap.TabContent = orDefault(p.Usage, noUsageText)
	case TabReviews:
		snap.TabContent = reviewsStubText
	default:
		snap.TabContent = orDefault(p.Description, noDescriptionText)
	}

	return snap
}

func (v *ProductDetailView) withReady(fn func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != DetailReady {
		return false
	}

	fn()
	return true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
