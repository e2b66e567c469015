package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// backgroundCacheTimeout ограничивает фоновую запись в кэш.
const backgroundCacheTimeout = 500 * time.Millisecond

// CatalogUseCase читает каталог через кэш: сначала Redis, затем удалённый API.
type CatalogUseCase struct {
	api    CatalogAPI
	cache  ProductCacheRepository
	logger logger.Logger
	wg     sync.WaitGroup
}

func NewCatalogUC(api CatalogAPI, cache ProductCacheRepository, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// FetchProduct возвращает товар по идентификатору.
func (c *CatalogUseCase) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "CatalogUseCase.FetchProduct"

	if id == "" {
		return nil, e.Wrap(op, e.ErrNotFound)
	}

	// Поиск товара в кэше; ошибка кэша не мешает сходить в API
	cached, err := c.cache.GetProducts(ctx, []string{id})
	if err != nil {
		c.logger.Warnf("product cache unavailable: %v", e.Wrap(op, err))
	} else if p, ok := cached[id]; ok {
		return &p, nil
	}

	product, err := c.api.FetchProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.inBackground(op, func(ctx context.Context) error {
		return c.cache.SetProducts(ctx, []domain.Product{*product})
	})

	return product, nil
}

// FetchProducts возвращает товары каталога, подходящие под фильтр. Пустой список — не ошибка.
// Кэшируется полный каталог, фильтр применяется локально.
func (c *CatalogUseCase) FetchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	const op = "CatalogUseCase.FetchProducts"

	products, ok, err := c.cache.GetCatalog(ctx)
	if err != nil {
		c.logger.Warnf("catalog cache unavailable: %v", e.Wrap(op, err))
	}

	if err != nil || !ok {
		products, err = c.api.FetchProducts(ctx, domain.ProductFilter{})
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		fetched := products
		c.inBackground(op, func(ctx context.Context) error {
			if err := c.cache.SetCatalog(ctx, fetched); err != nil {
				return err
			}
			return c.cache.SetProducts(ctx, fetched)
		})
	}

	if filter.IsZero() {
		return products, nil
	}

	res := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Matches(filter) {
			res = append(res, p)
		}
	}

	return res, nil
}

// Invalidate удаляет товары и список каталога из кэша (после изменений в админке).
func (c *CatalogUseCase) Invalidate(ctx context.Context, ids ...string) {
	const op = "CatalogUseCase.Invalidate"

	if len(ids) > 0 {
		if err := c.cache.DeleteProducts(ctx, ids); err != nil {
			c.logger.Warnf("failed to delete products from cache: %v", e.Wrap(op, err))
		}
	}

	if err := c.cache.DeleteCatalog(ctx); err != nil {
		c.logger.Warnf("failed to delete catalog from cache: %v", e.Wrap(op, err))
	}
}

// Wait дожидается фоновых записей в кэш.
func (c *CatalogUseCase) Wait() {
	c.wg.Wait()
}

func (c *CatalogUseCase) inBackground(op string, fn func(ctx context.Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		bgCtx, cancel := context.WithTimeout(context.Background(), backgroundCacheTimeout)
		defer cancel()

		if err := fn(bgCtx); err != nil {
			c.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
		}
	}()
}
