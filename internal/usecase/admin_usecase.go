package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogInvalidator сбрасывает кэш каталога после изменений товаров.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, ids ...string)
}

// AdminUseCase — CRUD товаров через удалённый API и загрузка изображений в MinIO.
type AdminUseCase struct {
	api         AdminAPI
	catalog     CatalogAPI
	imagesInfra ImagesInfra
	audit       AuditTrail
	cache       CatalogInvalidator
	logger      logger.Logger
	now         func() time.Time
}

func NewAdminUC(
	api AdminAPI,
	catalog CatalogAPI,
	imagesInfra ImagesInfra,
	audit AuditTrail,
	cache CatalogInvalidator,
	logger logger.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		api:         api,
		catalog:     catalog,
		imagesInfra: imagesInfra,
		audit:       audit,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

func (a *AdminUseCase) Login(ctx context.Context, email, password string) (string, error) {
	const op = "AdminUseCase.Login"

	if strings.TrimSpace(email) == "" || password == "" {
		return "", e.Wrap(op, e.ErrMissingFields)
	}

	token, err := a.api.Login(ctx, email, password)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return token, nil
}

// Dashboard считает товары и категории по актуальному каталогу (без кэша).
func (a *AdminUseCase) Dashboard(ctx context.Context) (*Dashboard, error) {
	const op = "AdminUseCase.Dashboard"

	products, err := a.catalog.FetchProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	categories := domain.SummarizeCategories(products)
	return &Dashboard{
		ProductsCount:   len(products),
		CategoriesCount: len(categories),
		Categories:      categories,
	}, nil
}

func (a *AdminUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	const op = "AdminUseCase.ListProducts"

	products, err := a.catalog.FetchProducts(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
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

// CreateProduct создаёт товар. Загруженные изображения удаляются, если API отказал.
func (a *AdminUseCase) CreateProduct(ctx context.Context, token string, req *SaveProductReq) (*domain.Product, error) {
	const op = "AdminUseCase.CreateProduct"

	saved, err := a.save(ctx, req, "", func(p *domain.Product) (*domain.Product, error) {
		return a.api.CreateProduct(ctx, token, p)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.afterMutation(ctx, ProductCreated, saved.ID, saved)
	return saved, nil
}

func (a *AdminUseCase) UpdateProduct(ctx context.Context, token string, id string, req *SaveProductReq) (*domain.Product, error) {
	const op = "AdminUseCase.UpdateProduct"

	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.ErrNotFound)
	}

	saved, err := a.save(ctx, req, id, func(p *domain.Product) (*domain.Product, error) {
		return a.api.UpdateProduct(ctx, token, p)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.afterMutation(ctx, ProductUpdated, id, saved)
	return saved, nil
}

func (a *AdminUseCase) DeleteProduct(ctx context.Context, token string, id string) error {
	const op = "AdminUseCase.DeleteProduct"

	if strings.TrimSpace(id) == "" {
		return e.Wrap(op, e.ErrNotFound)
	}

	if err := a.api.DeleteProduct(ctx, token, id); err != nil {
		return e.Wrap(op, err)
	}

	a.afterMutation(ctx, ProductDeleted, id, nil)
	return nil
}

// save валидирует запрос, загружает изображения и вызывает remote.
func (a *AdminUseCase) save(
	ctx context.Context,
	req *SaveProductReq,
	id string,
	remote func(p *domain.Product) (*domain.Product, error),
) (saved *domain.Product, err error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Benefits:    req.Benefits,
		Usage:       req.Usage,
	}

	var uploaded []string
	// Если API отказал, загруженные изображения становятся мусором
	defer func() {
		if err != nil && len(uploaded) > 0 {
			a.logger.Warnf(
				"Cleaning up orphaned images after remote failure. product_name: %s, error: %v",
				product.Name,
				err,
			)
			a.imagesInfra.CleanupImages(uploaded)
		}
	}()

	if len(req.Images) > 0 {
		if a.imagesInfra == nil {
			return nil, e.ErrInternalServerError
		}

		res, err := a.imagesInfra.UploadImages(ctx, NewUploadImagesReq(imagePrefix(product.Name), req.Images))
		if err != nil {
			return nil, err
		}
		uploaded = res.ImagesKeys
		product.Image = a.imagesInfra.PublicURL(uploaded[0])
	}

	saved, err = remote(product)
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// afterMutation пишет событие аудита и сбрасывает кэш. Ошибки не отменяют изменение товара.
func (a *AdminUseCase) afterMutation(ctx context.Context, eventType OutboxEventType, productID string, product *domain.Product) {
	const op = "AdminUseCase.afterMutation"

	// API не вернул id: сбрасываем только список каталога, событие без товара не пишем
	if productID == "" {
		a.logger.Warnf("catalog API returned no product id for %s, skipping audit", eventType)
		if a.cache != nil {
			a.cache.Invalidate(ctx)
		}
		return
	}

	if a.cache != nil {
		a.cache.Invalidate(ctx, productID)
	}

	if a.audit == nil {
		return
	}

	eventID := uuid.NewString()
	createdAt := a.now().UTC()

	payload, err := json.Marshal(newAuditPayload(eventID, eventType, productID, product, createdAt))
	if err != nil {
		a.logger.Warnf("failed to encode audit event: %v", e.Wrap(op, err))
		return
	}

	if err := a.audit.Record(ctx, NewOutboxEvent(eventID, eventType, productID, payload, createdAt)); err != nil {
		a.logger.Warnf("failed to record audit event %s for product %s: %v", eventType, productID, e.Wrap(op, err))
	}
}

type auditPayload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name,omitempty"`
	Price      string    `json:"price,omitempty"`
	Category   string    `json:"category,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newAuditPayload(eventID string, eventType OutboxEventType, productID string, p *domain.Product, at time.Time) auditPayload {
	payload := auditPayload{
		EventID:    eventID,
		EventType:  string(eventType),
		ProductID:  productID,
		OccurredAt: at,
	}

	if p != nil {
		payload.Name = p.Name
		payload.Price = p.Price.StringFixed(2)
		payload.Category = p.Category
	}

	return payload
}

// validateProduct проверяет данные товара из формы админки.
func validateProduct(req *SaveProductReq) error {
	if req == nil {
		return e.ErrMissingFields
	}

	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if strings.TrimSpace(req.Category) == "" {
		return e.ErrCategoryRequired
	}

	if req.Price.IsNegative() {
		return e.ErrInvalidPrice
	}

	if !req.Price.Equal(req.Price.Truncate(2)) {
		return e.ErrPricePrecision
	}

	return nil
}

// imagePrefix превращает название товара в префикс ключей MinIO.
func imagePrefix(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	prefix := strings.TrimSuffix(b.String(), "-")
	if prefix == "" {
		return "product"
	}
	return prefix
}

// ParsePrice разбирает цену из формы: неотрицательное число, не больше двух знаков после запятой.
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, e.ErrInvalidPrice
	}
	if price.IsNegative() {
		return decimal.Zero, e.ErrInvalidPrice
	}
	if !price.Equal(price.Truncate(2)) {
		return decimal.Zero, e.ErrPricePrecision
	}
	return price, nil
}
