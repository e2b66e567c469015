package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *clients.RedisClient, *cfg.RedisCfg) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCfg := &cfg.RedisCfg{
		Addr:        mr.Addr(),
		DialTimeout: time.Second,
		Timeout:     time.Second,
		ProductTTL:  time.Minute,
	}

	client := clients.NewRedisClient(redisCfg)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()))

	return mr, client, redisCfg
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "a", Name: "Soap", Price: decimal.RequireFromString("4.50"), Category: "Bath", Benefits: []string{"soft"}},
		{ID: "b", Name: "Oil", Price: decimal.RequireFromString("12"), Usage: "Apply daily"},
	}
}

func TestCacheRepoProducts(t *testing.T) {
	mr, client, redisCfg := newTestRedis(t)
	repo := NewCacheRepo(client, redisCfg, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.SetProducts(ctx, sampleProducts()))
	assert.Equal(t, time.Minute, mr.TTL("product:a"))

	got, err := repo.GetProducts(ctx, []string{"a", "missing", "b"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got["a"].Price.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, []string{"soft"}, got["a"].Benefits)
	assert.Equal(t, "Apply daily", got["b"].Usage)

	require.NoError(t, repo.DeleteProducts(ctx, []string{"a"}))
	got, err = repo.GetProducts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.NotContains(t, got, "a")
	assert.Contains(t, got, "b")
}

func TestCacheRepoSkipsCorruptedEntries(t *testing.T) {
	mr, client, redisCfg := newTestRedis(t)
	repo := NewCacheRepo(client, redisCfg, logger.NewNop())

	require.NoError(t, mr.Set("product:x", "{not json"))
	require.NoError(t, mr.Set("product:y", `{"id":"other","name":"n","price":"1"}`))

	got, err := repo.GetProducts(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, mr.Exists("product:y"))
}

func TestCacheRepoCatalog(t *testing.T) {
	mr, client, redisCfg := newTestRedis(t)
	repo := NewCacheRepo(client, redisCfg, logger.NewNop())
	ctx := context.Background()

	_, ok, err := repo.GetCatalog(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetCatalog(ctx, []domain.Product{}))
	products, ok, err := repo.GetCatalog(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, products)

	require.NoError(t, repo.SetCatalog(ctx, sampleProducts()))
	products, ok, err = repo.GetCatalog(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, []string{products[0].ID, products[1].ID})

	mr.FastForward(2 * time.Minute)
	_, ok, err = repo.GetCatalog(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCartRepoRoundTrip(t *testing.T) {
	mr, client, _ := newTestRedis(t)
	repo := NewCartRepo(client, time.Hour)
	ctx := context.Background()

	state, err := repo.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, state)

	saved := domain.CartState{
		Items: []domain.CartLineItem{
			{ID: "a", Name: "Soap", Price: decimal.RequireFromString("4.50"), Quantity: 2},
			{ID: "b", Name: "Oil", Price: decimal.RequireFromString("12"), Image: "http://img", Quantity: 1},
		},
		Version: 3,
	}
	require.NoError(t, repo.Save(ctx, "sid", saved))
	assert.Equal(t, time.Hour, mr.TTL("cart:sid"))

	state, err = repo.Load(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, uint64(3), state.Version)
	assert.Equal(t, "21.00", state.TotalPrice().StringFixed(2))
	assert.Equal(t, "http://img", state.Items[1].Image)

	require.NoError(t, repo.Save(ctx, "sid", domain.CartState{Version: 4}))
	assert.False(t, mr.Exists("cart:sid"))
}
