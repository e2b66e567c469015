package converter

import (
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует товары между domain и моделью Redis.
type ProductConverter struct{}

func (ProductConverter) ToRedisModel(p *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Image:       p.Image,
		Description: p.Description,
		Category:    p.Category,
		Benefits:    p.Benefits,
		Usage:       p.Usage,
	}
}

func (ProductConverter) ToDomain(m *ProductRedisModel) (*domain.Product, error) {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return nil, err
	}

	return &domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Price:       price,
		Image:       m.Image,
		Description: m.Description,
		Category:    m.Category,
		Benefits:    m.Benefits,
		Usage:       m.Usage,
	}, nil
}

func (c ProductConverter) ToArrRedisModel(products []domain.Product) []ProductRedisModel {
	res := make([]ProductRedisModel, 0, len(products))
	for i := range products {
		res = append(res, *c.ToRedisModel(&products[i]))
	}
	return res
}

func (c ProductConverter) ToArrDomain(models []ProductRedisModel) ([]domain.Product, error) {
	res := make([]domain.Product, 0, len(models))
	for i := range models {
		p, err := c.ToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	return res, nil
}

// CartConverter преобразует снимки корзины между domain и моделью Redis.
type CartConverter struct{}

func (CartConverter) ToRedisModel(s domain.CartState) *CartRedisModel {
	items := make([]CartLineRedisModel, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, CartLineRedisModel{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price.String(),
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}

	return &CartRedisModel{Items: items, Version: s.Version}
}

func (CartConverter) ToDomain(m *CartRedisModel) (*domain.CartState, error) {
	items := make([]domain.CartLineItem, 0, len(m.Items))
	for _, it := range m.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, err
		}

		items = append(items, domain.CartLineItem{
			ID:       it.ID,
			Name:     it.Name,
			Price:    price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}

	return &domain.CartState{Items: items, Version: m.Version}, nil
}
