package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminAPI struct {
	mu      sync.Mutex
	err     error
	noID    bool // API отвечает пустым телом на создание
	saved   []domain.Product
	deleted []string
	tokens  []string
}

func (f *fakeAdminAPI) Login(_ context.Context, email, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if password != "secret" {
		return "", e.ErrUnauthorized
	}
	return "token-" + email, nil
}

func (f *fakeAdminAPI) CreateProduct(_ context.Context, token string, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	created := *p
	if !f.noID {
		created.ID = "new-id"
	}
	f.saved = append(f.saved, created)
	return &created, nil
}

func (f *fakeAdminAPI) UpdateProduct(_ context.Context, token string, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, *p)
	return p, nil
}

func (f *fakeAdminAPI) DeleteProduct(_ context.Context, token string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeImages struct {
	mu        sync.Mutex
	uploadErr error
	prefixes  []string
	cleaned   []string
}

func (f *fakeImages) UploadImages(_ context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prefixes = append(f.prefixes, req.Prefix)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	keys := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		keys = append(keys, req.Prefix+"/"+img.Name)
	}
	return NewUploadImagesRes(keys), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleaned = append(f.cleaned, keys...)
}

func (f *fakeImages) PublicURL(key string) string {
	return "http://cdn.local/product-images/" + key
}

type fakeAudit struct {
	mu     sync.Mutex
	err    error
	events []*OutboxEvent
}

func (f *fakeAudit) Record(_ context.Context, event *OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeInvalidator struct {
	calls int
	ids   []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, ids ...string) {
	f.calls++
	f.ids = append(f.ids, ids...)
}

type adminFixture struct {
	uc     *AdminUseCase
	api    *fakeAdminAPI
	images *fakeImages
	audit  *fakeAudit
	cache  *fakeInvalidator
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		api:    &fakeAdminAPI{},
		images: &fakeImages{},
		audit:  &fakeAudit{},
		cache:  &fakeInvalidator{},
	}
	f.uc = NewAdminUC(f.api, newFakeCatalog(catalogFixture()...), f.images, f.audit, f.cache, logger.NewNop())
	return f
}

func validReq() *SaveProductReq {
	req := NewSaveProductReq("Rose Water", decimal.RequireFromString("9.99"), "Face", nil)
	req.Description = "Toner"
	return req
}

func TestAdminLogin(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	token, err := f.uc.Login(ctx, "admin@shop.local", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-admin@shop.local", token)

	_, err = f.uc.Login(ctx, "admin@shop.local", "wrong")
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	_, err = f.uc.Login(ctx, "", "secret")
	assert.ErrorIs(t, err, e.ErrMissingFields)
}

func TestAdminDashboard(t *testing.T) {
	f := newAdminFixture()

	d, err := f.uc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.ProductsCount)
	assert.Equal(t, 2, d.CategoriesCount)
	assert.Equal(t, "Bath", d.Categories[0].Name)
}

func TestAdminCreateProductValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *SaveProductReq)
		want   error
	}{
		{"empty name", func(r *SaveProductReq) { r.Name = "  " }, e.ErrProductNameRequired},
		{"empty category", func(r *SaveProductReq) { r.Category = "" }, e.ErrCategoryRequired},
		{"negative price", func(r *SaveProductReq) { r.Price = decimal.RequireFromString("-1") }, e.ErrInvalidPrice},
		{"three decimals", func(r *SaveProductReq) { r.Price = decimal.RequireFromString("1.005") }, e.ErrPricePrecision},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAdminFixture()
			req := validReq()
			tc.mutate(req)

			_, err := f.uc.CreateProduct(context.Background(), "tok", req)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.api.saved)
			assert.Empty(t, f.audit.events)
		})
	}
}

func TestAdminCreateProductWithImages(t *testing.T) {
	f := newAdminFixture()
	req := validReq()
	req.Images = []ProductImage{
		*NewProductImage([]byte{0xff, 0xd8}, "image/jpeg", "front.jpg"),
		*NewProductImage([]byte{0x89, 0x50}, "image/png", "back.png"),
	}

	p, err := f.uc.CreateProduct(context.Background(), "tok", req)
	require.NoError(t, err)

	assert.Equal(t, "new-id", p.ID)
	assert.Equal(t, "http://cdn.local/product-images/rose-water/front.jpg", p.Image)
	assert.Equal(t, []string{"rose-water"}, f.images.prefixes)
	assert.Equal(t, []string{"tok"}, f.api.tokens)
	assert.Equal(t, []string{"new-id"}, f.cache.ids)

	require.Len(t, f.audit.events, 1)
	ev := f.audit.events[0]
	assert.Equal(t, ProductCreated, ev.EventType)
	assert.Equal(t, "new-id", ev.ProductID)
	assert.Equal(t, Pending, ev.Status)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "9.99", payload["price"])
	assert.Equal(t, ev.EventID, payload["event_id"])
}

func TestAdminCreateProductRemoteFailureCleansImages(t *testing.T) {
	f := newAdminFixture()
	f.api.err = e.ErrNetwork
	req := validReq()
	req.Images = []ProductImage{*NewProductImage([]byte{1}, "image/webp", "a.webp")}

	_, err := f.uc.CreateProduct(context.Background(), "tok", req)
	assert.ErrorIs(t, err, e.ErrNetwork)
	assert.Equal(t, []string{"rose-water/a.webp"}, f.images.cleaned)
	assert.Empty(t, f.audit.events)
	assert.Empty(t, f.cache.ids)
}

func TestAdminUploadFailureDoesNotCallRemote(t *testing.T) {
	f := newAdminFixture()
	f.images.uploadErr = errors.New("minio down")
	req := validReq()
	req.Images = []ProductImage{*NewProductImage([]byte{1}, "image/png", "a.png")}

	_, err := f.uc.CreateProduct(context.Background(), "tok", req)
	require.Error(t, err)
	assert.Empty(t, f.api.tokens)
	assert.Empty(t, f.images.cleaned)
}

func TestAdminAuditFailureDoesNotFailMutation(t *testing.T) {
	f := newAdminFixture()
	f.audit.err = errors.New("postgres down")

	p, err := f.uc.UpdateProduct(context.Background(), "tok", "soap", validReq())
	require.NoError(t, err)
	assert.Equal(t, "soap", p.ID)
	assert.Equal(t, []string{"soap"}, f.cache.ids)
}

func TestAdminCreateWithoutReturnedIDSkipsAudit(t *testing.T) {
	f := newAdminFixture()
	f.api.noID = true

	p, err := f.uc.CreateProduct(context.Background(), "tok", validReq())
	require.NoError(t, err)
	assert.Empty(t, p.ID)

	assert.Empty(t, f.audit.events)
	assert.Equal(t, 1, f.cache.calls)
	assert.Empty(t, f.cache.ids)
}

func TestAdminDeleteProduct(t *testing.T) {
	f := newAdminFixture()

	require.NoError(t, f.uc.DeleteProduct(context.Background(), "tok", "oil"))
	assert.Equal(t, []string{"oil"}, f.api.deleted)
	require.Len(t, f.audit.events, 1)
	assert.Equal(t, ProductDeleted, f.audit.events[0].EventType)

	err := f.uc.DeleteProduct(context.Background(), "tok", "")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestAdminListProductsFilter(t *testing.T) {
	f := newAdminFixture()

	products, err := f.uc.ListProducts(context.Background(), domain.ProductFilter{Category: "hair"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "oil", products[0].ID)
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.50", p.StringFixed(2))

	_, err = ParsePrice("abc")
	assert.ErrorIs(t, err, e.ErrInvalidPrice)

	_, err = ParsePrice("-3")
	assert.ErrorIs(t, err, e.ErrInvalidPrice)

	_, err = ParsePrice("1.999")
	assert.ErrorIs(t, err, e.ErrPricePrecision)
}

func TestImagePrefix(t *testing.T) {
	assert.Equal(t, "rose-water", imagePrefix("Rose  Water!"))
	assert.Equal(t, "product", imagePrefix("Мыло"))
}
