package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNewProductCard(t *testing.T) {
	p := product("soap", "4.5")
	p.Image = ""

	card := NewProductCard(p)
	assert.Equal(t, "4.50", card.Price)
	assert.Equal(t, "/product/soap", card.Link)
	assert.Equal(t, domain.DefaultImageURL+"&w=400", card.Image)
}

func TestNewHomePageKeepsAllCategories(t *testing.T) {
	catalog := catalogFixture()

	page := NewHomePage(catalog[:1], catalog)
	assert.Len(t, page.Products, 1)
	assert.Len(t, page.Categories, 2)
}

func TestNewCartView(t *testing.T) {
	cart := NewCartStore()
	a := product("a", "10")
	a.Image = ""
	cart.AddToCart(a)
	cart.AddToCart(a)
	cart.AddToCart(product("b", "0.35"))

	view := NewCartView(cart.State())
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "20.00", view.Rows[0].LineTotal)
	assert.Equal(t, "10.00", view.Rows[0].UnitPrice)
	assert.Equal(t, domain.DefaultImageURL+"&w=200", view.Rows[0].Image)
	assert.Equal(t, "20.35", view.Subtotal)
	assert.Equal(t, 3, view.ItemsCount)
	assert.False(t, view.Empty)

	empty := NewCartView(NewCartStore().State())
	assert.True(t, empty.Empty)
	assert.Equal(t, "0.00", empty.Subtotal)
	assert.NotNil(t, empty.Rows)
}

func TestIncrementDecrementLine(t *testing.T) {
	cart := NewCartStore()
	cart.AddToCart(product("a", "1"))

	IncrementLine(cart, "a")
	assert.Equal(t, 2, cart.Items()[0].Quantity)

	DecrementLine(cart, "a")
	DecrementLine(cart, "a")
	assert.Empty(t, cart.Items())

	// неизвестная строка игнорируется
	IncrementLine(cart, "ghost")
	assert.Empty(t, cart.Items())
}

func TestConcurrentIncrementDecrementLoseNoClicks(t *testing.T) {
	cart := NewCartStore()
	cart.AddToCart(product("a", "1"))
	cart.UpdateQuantity("a", 50)

	var notifications int
	cart.Subscribe(func(domain.CartState) { notifications++ })

	const increments, decrements = 100, 40
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < increments+decrements; i++ {
		g.Go(func() error {
			if i < increments {
				IncrementLine(cart, "a")
			} else {
				DecrementLine(cart, "a")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	state := cart.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 50+increments-decrements, state.Items[0].Quantity)
	assert.Equal(t, increments+decrements, notifications)
	assert.Equal(t, uint64(2+increments+decrements), state.Version)
}
