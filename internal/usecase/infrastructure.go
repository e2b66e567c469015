package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// CatalogAPI — клиент удалённого API каталога.
// FetchProduct возвращает e.ErrNotFound или e.ErrNetwork.
type CatalogAPI interface {
	FetchProduct(ctx context.Context, id string) (*domain.Product, error)
	FetchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// AdminAPI — CRUD-эндпоинты удалённого API и авторизация админки.
type AdminAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateProduct(ctx context.Context, token string, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token string, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, token string, id string) error
}

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
	PublicURL(key string) string
}

// CartEventPublisher отправляет изменения корзины во внешнюю шину.
type CartEventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, state domain.CartState) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
