package domain

import "github.com/shopspring/decimal"

// CartLineItem — строка корзины: один товар и его количество.
// Цена фиксируется в момент добавления товара.
type CartLineItem struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// NewCartLineItem создаёт строку корзины с количеством 1.
func NewCartLineItem(p Product) CartLineItem {
	return CartLineItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: 1,
	}
}

// LineTotal — цена строки: price * quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartState — снимок корзины. Items упорядочены по времени добавления.
// Version растёт с каждой изменившей корзину операцией.
type CartState struct {
	Items   []CartLineItem
	Version uint64
}

// TotalPrice всегда вычисляется из строк и нигде не хранится.
func (s CartState) TotalPrice() decimal.Decimal {
	return TotalPrice(s.Items)
}

// ItemsCount — суммарное количество единиц товара в корзине.
func (s CartState) ItemsCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}

// TotalPrice суммирует price * quantity по строкам.
func TotalPrice(items []CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
