package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartStateTotalPrice(t *testing.T) {
	s := CartState{Items: []CartLineItem{
		{ID: "a", Price: decimal.RequireFromString("10.00"), Quantity: 3},
		{ID: "b", Price: decimal.RequireFromString("0.10"), Quantity: 3},
	}}

	assert.Equal(t, "30.30", s.TotalPrice().StringFixed(2))
	assert.Equal(t, 6, s.ItemsCount())
	assert.False(t, s.IsEmpty())
}

func TestEmptyCartTotalIsZero(t *testing.T) {
	var s CartState
	assert.True(t, s.TotalPrice().IsZero())
	assert.True(t, s.IsEmpty())
}

func TestImageOrDefault(t *testing.T) {
	assert.Equal(t, "https://cdn/x.jpg", ImageOrDefault("https://cdn/x.jpg", ImageWidthCard))
	assert.Equal(t, DefaultImageURL+"&w=200", ImageOrDefault("  ", ImageWidthCart))
	assert.Equal(t, DefaultImageURL+"&w=800", ImageOrDefault("", ImageWidthDetail))
}

func TestProductMatches(t *testing.T) {
	p := Product{Name: "Vitamin C Serum", Description: "Brightening", Category: "Skincare"}

	assert.True(t, p.Matches(ProductFilter{}))
	assert.True(t, p.Matches(ProductFilter{Category: "skincare"}))
	assert.False(t, p.Matches(ProductFilter{Category: "Haircare"}))
	assert.True(t, p.Matches(ProductFilter{Query: "serum"}))
	assert.True(t, p.Matches(ProductFilter{Query: "BRIGHT"}))
	assert.False(t, p.Matches(ProductFilter{Category: "Skincare", Query: "shampoo"}))
}

func TestSummarizeCategories(t *testing.T) {
	products := []Product{
		{Category: "Skincare"}, {Category: "Haircare"}, {Category: "Skincare"}, {Category: ""},
	}

	assert.Equal(t, []CategorySummary{
		{Name: "Haircare", ProductsCount: 1},
		{Name: "Skincare", ProductsCount: 2},
	}, SummarizeCategories(products))
}
