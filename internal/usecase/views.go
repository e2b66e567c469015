package usecase

import (
	"github.com/DRSN-tech/storefront/internal/domain"
)

// ProductCard — карточка товара в списке каталога.
type ProductCard struct {
	ID          string
	Name        string
	Price       string
	Image       string
	Description string
	Category    string
	Link        string
}

// HomePage — список карточек и категории для панели фильтров.
type HomePage struct {
	Products   []ProductCard
	Categories []domain.CategorySummary
}

// CartRow — строка корзины.
type CartRow struct {
	ID        string
	Name      string
	Image     string
	UnitPrice string
	Quantity  int
	LineTotal string
}

// CartView — отображение корзины сессии.
type CartView struct {
	Rows       []CartRow
	ItemsCount int
	Subtotal   string
	Empty      bool
	Version    uint64
}

func NewProductCard(p domain.Product) ProductCard {
	return ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.StringFixed(2),
		Image:       domain.ImageOrDefault(p.Image, domain.ImageWidthCard),
		Description: p.Description,
		Category:    p.Category,
		Link:        "/product/" + p.ID,
	}
}

// NewHomePage собирает главную страницу. Категории считаются по полному каталогу,
// чтобы панель фильтров не схлопывалась при выбранном фильтре.
func NewHomePage(products []domain.Product, catalog []domain.Product) *HomePage {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewProductCard(p))
	}

	return &HomePage{
		Products:   cards,
		Categories: domain.SummarizeCategories(catalog),
	}
}

func NewCartView(state domain.CartState) *CartView {
	rows := make([]CartRow, 0, len(state.Items))
	for _, it := range state.Items {
		rows = append(rows, CartRow{
			ID:        it.ID,
			Name:      it.Name,
			Image:     domain.ImageOrDefault(it.Image, domain.ImageWidthCart),
			UnitPrice: it.Price.StringFixed(2),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().StringFixed(2),
		})
	}

	return &CartView{
		Rows:       rows,
		ItemsCount: state.ItemsCount(),
		Subtotal:   state.TotalPrice().StringFixed(2),
		Empty:      state.IsEmpty(),
		Version:    state.Version,
	}
}

// IncrementLine увеличивает количество строки корзины на 1 (кнопка «+»).
func IncrementLine(cart *CartStore, id string) {
	cart.updateQuantityFunc(id, func(q int) int { return q + 1 })
}

// DecrementLine уменьшает количество строки на 1 (кнопка «−»); при нуле строка удаляется.
func DecrementLine(cart *CartStore, id string) {
	cart.updateQuantityFunc(id, func(q int) int { return q - 1 })
}
