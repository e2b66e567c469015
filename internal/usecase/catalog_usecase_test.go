package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() []domain.Product {
	soap := product("soap", "4.50")
	soap.Name = "Lavender Soap"
	soap.Category = "Bath"
	soap.Description = "Hand made"

	oil := product("oil", "12")
	oil.Name = "Argan Oil"
	oil.Category = "Hair"
	oil.Description = "Cold pressed, good for soap making"

	return []domain.Product{soap, oil}
}

func TestFetchProductReadsThroughCache(t *testing.T) {
	api := newFakeCatalog(catalogFixture()...)
	cache := newFakeProductCache()
	uc := NewCatalogUC(api, cache, logger.NewNop())
	ctx := context.Background()

	p, err := uc.FetchProduct(ctx, "soap")
	require.NoError(t, err)
	assert.Equal(t, "Lavender Soap", p.Name)
	uc.Wait()

	p, err = uc.FetchProduct(ctx, "soap")
	require.NoError(t, err)
	assert.Equal(t, "Lavender Soap", p.Name)
	assert.Equal(t, 1, api.callCount())
}

func TestFetchProductErrors(t *testing.T) {
	api := newFakeCatalog(catalogFixture()...)
	uc := NewCatalogUC(api, newFakeProductCache(), logger.NewNop())
	ctx := context.Background()

	_, err := uc.FetchProduct(ctx, "missing")
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = uc.FetchProduct(ctx, "")
	assert.ErrorIs(t, err, e.ErrNotFound)

	api.err = e.ErrNetwork
	_, err = uc.FetchProduct(ctx, "soap")
	assert.ErrorIs(t, err, e.ErrNetwork)
}

func TestFetchProductCacheFailureFallsBackToAPI(t *testing.T) {
	api := newFakeCatalog(catalogFixture()...)
	cache := newFakeProductCache()
	cache.err = errors.New("redis down")
	uc := NewCatalogUC(api, cache, logger.NewNop())

	p, err := uc.FetchProduct(context.Background(), "oil")
	require.NoError(t, err)
	assert.Equal(t, "Argan Oil", p.Name)
	uc.Wait()
}

func TestFetchProductsFiltersLocally(t *testing.T) {
	api := newFakeCatalog(catalogFixture()...)
	uc := NewCatalogUC(api, newFakeProductCache(), logger.NewNop())
	ctx := context.Background()

	all, err := uc.FetchProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	uc.Wait()

	bath, err := uc.FetchProducts(ctx, domain.ProductFilter{Category: "bath"})
	require.NoError(t, err)
	require.Len(t, bath, 1)
	assert.Equal(t, "soap", bath[0].ID)

	bySoap, err := uc.FetchProducts(ctx, domain.ProductFilter{Query: "SOAP"})
	require.NoError(t, err)
	assert.Len(t, bySoap, 2)

	none, err := uc.FetchProducts(ctx, domain.ProductFilter{Category: "Kitchen"})
	require.NoError(t, err)
	assert.Empty(t, none)

	// все запросы после первого обслужены из кэша
	assert.Equal(t, 1, api.callCount())
}

func TestFetchProductsEmptyCatalogIsNotAnError(t *testing.T) {
	uc := NewCatalogUC(newFakeCatalog(), newFakeProductCache(), logger.NewNop())

	products, err := uc.FetchProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
	uc.Wait()
}

func TestInvalidateDropsCachedEntries(t *testing.T) {
	api := newFakeCatalog(catalogFixture()...)
	cache := newFakeProductCache()
	uc := NewCatalogUC(api, cache, logger.NewNop())
	ctx := context.Background()

	_, err := uc.FetchProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	uc.Wait()

	uc.Invalidate(ctx, "soap")
	assert.Equal(t, []string{"soap"}, cache.deleted)

	_, err = uc.FetchProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	uc.Wait()
	assert.Equal(t, 2, api.callCount())
}
