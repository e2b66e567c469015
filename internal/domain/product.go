package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultImageURL — изображение-заглушка для товаров без картинки.
// Размер подставляется под место отображения (корзина, карточка, страница товара).
const DefaultImageURL = "https://images.pexels.com/photos/90946/pexels-photo-90946.jpeg?auto=compress&cs=tinysrgb"

// Ширина заглушки для разных мест отображения
const (
	ImageWidthCart   = 200
	ImageWidthCard   = 400
	ImageWidthDetail = 800
)

// Product описывает товар, получаемый из удалённого API каталога. Только для чтения.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Image       string
	Description string
	Category    string
	Benefits    []string
	Usage       string
}

func NewProduct(id, name string, price decimal.Decimal, category string) *Product {
	return &Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Category: category,
	}
}

// ImageOrDefault возвращает изображение товара или заглушку нужной ширины.
func ImageOrDefault(image string, width int) string {
	if strings.TrimSpace(image) != "" {
		return image
	}

	return DefaultImageURL + "&w=" + strconv.Itoa(width)
}

// Matches проверяет товар на соответствие фильтру каталога.
func (p *Product) Matches(f ProductFilter) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// ProductFilter — необязательные фильтры списка товаров.
type ProductFilter struct {
	Category string
	Query    string
}

// IsZero сообщает, что фильтр пустой.
func (f ProductFilter) IsZero() bool {
	return f.Category == "" && strings.TrimSpace(f.Query) == ""
}
