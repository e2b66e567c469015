package http

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// REQUESTS

type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SaveProductRequest — JSON-вариант создания/изменения товара (без загрузки изображений).
type SaveProductRequest struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Usage       string   `json:"usage"`
	Benefits    []string `json:"benefits"`
	Image       string   `json:"image"`
}

// RESPONSES

type ProductCardResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Link        string `json:"link"`
}

type CategoryResponse struct {
	Name          string `json:"name"`
	ProductsCount int    `json:"products_count"`
}

type HomePageResponse struct {
	Products   []ProductCardResponse `json:"products"`
	Categories []CategoryResponse    `json:"categories"`
}

type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Benefits    []string `json:"benefits"`
	Usage       string   `json:"usage"`
}

type ProductDetailResponse struct {
	State      string           `json:"state"`
	Product    *ProductResponse `json:"product,omitempty"`
	Image      string           `json:"image,omitempty"`
	Quantity   int              `json:"quantity,omitempty"`
	Tab        string           `json:"tab,omitempty"`
	TabContent string           `json:"tab_content,omitempty"`
}

type CartRowResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type CartResponse struct {
	Items      []CartRowResponse `json:"items"`
	ItemsCount int               `json:"items_count"`
	Subtotal   string            `json:"subtotal"`
	Empty      bool              `json:"empty"`
	Version    uint64            `json:"version"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type DashboardResponse struct {
	ProductsCount   int                `json:"products_count"`
	CategoriesCount int                `json:"categories_count"`
	Categories      []CategoryResponse `json:"categories"`
}

// MAPPERS

func toProductCardResponse(c usecase.ProductCard) ProductCardResponse {
	return ProductCardResponse{
		ID:          c.ID,
		Name:        c.Name,
		Price:       c.Price,
		Image:       c.Image,
		Description: c.Description,
		Category:    c.Category,
		Link:        c.Link,
	}
}

func toCategoriesResponse(categories []domain.CategorySummary) []CategoryResponse {
	res := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		res[i] = CategoryResponse{Name: c.Name, ProductsCount: c.ProductsCount}
	}

	return res
}

func toHomePageResponse(page *usecase.HomePage) *HomePageResponse {
	cards := make([]ProductCardResponse, len(page.Products))
	for i, c := range page.Products {
		cards[i] = toProductCardResponse(c)
	}

	return &HomePageResponse{
		Products:   cards,
		Categories: toCategoriesResponse(page.Categories),
	}
}

func toProductResponse(p *domain.Product) *ProductResponse {
	benefits := p.Benefits
	if benefits == nil {
		benefits = []string{}
	}

	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.StringFixed(2),
		Image:       p.Image,
		Description: p.Description,
		Category:    p.Category,
		Benefits:    benefits,
		Usage:       p.Usage,
	}
}

func toArrProductResponse(products []domain.Product) []*ProductResponse {
	res := make([]*ProductResponse, len(products))
	for i := range products {
		res[i] = toProductResponse(&products[i])
	}

	return res
}

func toProductDetailResponse(s usecase.DetailSnapshot) *ProductDetailResponse {
	res := &ProductDetailResponse{State: string(s.State)}
	if s.State != usecase.DetailReady {
		return res
	}

	res.Product = toProductResponse(s.Product)
	res.Image = s.Image
	res.Quantity = s.Quantity
	res.Tab = string(s.Tab)
	res.TabContent = s.TabContent
	return res
}

func toCartResponse(view *usecase.CartView) *CartResponse {
	rows := make([]CartRowResponse, len(view.Rows))
	for i, r := range view.Rows {
		rows[i] = CartRowResponse{
			ID:        r.ID,
			Name:      r.Name,
			Image:     r.Image,
			UnitPrice: r.UnitPrice,
			Quantity:  r.Quantity,
			LineTotal: r.LineTotal,
		}
	}

	return &CartResponse{
		Items:      rows,
		ItemsCount: view.ItemsCount,
		Subtotal:   view.Subtotal,
		Empty:      view.Empty,
		Version:    view.Version,
	}
}

func toDashboardResponse(d *usecase.Dashboard) *DashboardResponse {
	return &DashboardResponse{
		ProductsCount:   d.ProductsCount,
		CategoriesCount: d.CategoriesCount,
		Categories:      toCategoriesResponse(d.Categories),
	}
}
