package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CatalogUC interface {
	FetchProduct(ctx context.Context, id string) (*domain.Product, error)
	FetchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

type CartSessionsUC interface {
	Get(ctx context.Context, sessionID string) *CartStore
	Drop(ctx context.Context, sessionID string)
}

type AdminUC interface {
	Login(ctx context.Context, email, password string) (string, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	CreateProduct(ctx context.Context, token string, req *SaveProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token string, id string, req *SaveProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, token string, id string) error
}

// AuditTrail записывает события аудита админки.
type AuditTrail interface {
	Record(ctx context.Context, event *OutboxEvent) error
}
