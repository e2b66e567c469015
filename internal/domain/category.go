package domain

import "sort"

// CategorySummary — количество товаров в категории (дашборд админки, фильтры главной).
type CategorySummary struct {
	Name          string
	ProductsCount int
}

// SummarizeCategories считает товары по категориям. Результат отсортирован по имени.
// Товары без категории не учитываются.
func SummarizeCategories(products []Product) []CategorySummary {
	counts := make(map[string]int)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		counts[p.Category]++
	}

	res := make([]CategorySummary, 0, len(counts))
	for name, count := range counts {
		res = append(res, CategorySummary{Name: name, ProductsCount: count})
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}
