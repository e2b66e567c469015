package http

import (
	_ "github.com/DRSN-tech/storefront/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router  *chi.Mux
	httpCfg *cfg.HTTPConfig
	cartCfg *cfg.CartCfg
	logger  logger.Logger
}

func NewRouter(router *chi.Mux, httpCfg *cfg.HTTPConfig, cartCfg *cfg.CartCfg, logger logger.Logger) *Router {
	return &Router{router: router, httpCfg: httpCfg, cartCfg: cartCfg, logger: logger}
}

func (r *Router) Init(catalogUC usecase.CatalogUC, carts usecase.CartSessionsUC, adminUC usecase.AdminUC, checks ...HealthCheck) {
	r.router.Use(correlationMiddleware, requestLogger(r.logger), middleware.Recoverer)

	r.router.Get("/healthz", healthHandler(checks))
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.httpCfg.SwaggerURL), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Group(func(storefront chi.Router) {
			storefront.Use(sessionMiddleware(r.cartCfg))

			registerCatalogRoutes(storefront, NewCatalogHandler(catalogUC, carts, r.cartCfg.MaxLineQuantity, r.logger))
			registerCartRoutes(storefront, NewCartHandler(catalogUC, carts, r.cartCfg.MaxLineQuantity, r.logger))
		})

		registerAdminRoutes(v1, NewAdminHandler(adminUC, r.logger))
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/{id}", h.getProduct)
		pr.Post("/{id}/cart", h.addProductToCart)
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Get("/", h.getCart)
		cr.Delete("/", h.clearCart)
		cr.Get("/events", h.streamEvents)

		cr.Post("/items", h.addItem)
		cr.Patch("/items/{id}", h.updateItem)
		cr.Delete("/items/{id}", h.removeItem)
		cr.Post("/items/{id}/increment", h.incrementItem)
		cr.Post("/items/{id}/decrement", h.decrementItem)
	})
}

func registerAdminRoutes(router chi.Router, h *AdminHandler) {
	router.Route("/admin", func(ar chi.Router) {
		ar.Post("/login", h.login)
		ar.Get("/dashboard", h.dashboard)

		ar.Get("/products", h.listProducts)
		ar.Post("/products", h.createProduct)
		ar.Put("/products/{id}", h.updateProduct)
		ar.Delete("/products/{id}", h.deleteProduct)
	})
}
