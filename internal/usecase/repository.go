package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// ProductCacheRepository — кэш товаров каталога (Redis).
// Промах кэша не является ошибкой: Get* возвращают пустой результат.
type ProductCacheRepository interface {
	GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	DeleteProducts(ctx context.Context, ids []string) error
	GetCatalog(ctx context.Context) ([]domain.Product, bool, error)
	SetCatalog(ctx context.Context, products []domain.Product) error
	DeleteCatalog(ctx context.Context) error
}

// CartSnapshotRepository хранит снимки сессионных корзин.
// Load возвращает nil без ошибки, если снимка нет.
type CartSnapshotRepository interface {
	Load(ctx context.Context, sessionID string) (*domain.CartState, error)
	Save(ctx context.Context, sessionID string, state domain.CartState) error
	Delete(ctx context.Context, sessionID string) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

// OutboxRepository — журнал событий аудита админки (transactional outbox).
// Create ожидает транзакцию в контексте.
type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64) error
}
