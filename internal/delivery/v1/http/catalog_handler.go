package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUC   usecase.CatalogUC
	carts       usecase.CartSessionsUC
	maxQuantity int
	logger      logger.Logger
}

func NewCatalogHandler(catalogUC usecase.CatalogUC, carts usecase.CartSessionsUC, maxQuantity int, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, carts: carts, maxQuantity: maxQuantity, logger: logger}
}

// listProducts
//
//	@Summary		Главная страница каталога
//	@Description	Карточки товаров и категории для панели фильтров. Ошибка каталога отдаётся как пустой список.
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"Категория"
//	@Param			q			query		string	false	"Поиск по названию и описанию"
//	@Success		200			{object}	HomePageResponse
//	@Router			/products [get]
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := productFilterFromQuery(r)

	products, err := h.catalogUC.FetchProducts(r.Context(), filter)
	if err != nil {
		h.logger.Warnf("catalog is unavailable, rendering empty list: %v", err)
		products = []domain.Product{}
	}

	catalog := products
	if !filter.IsZero() {
		if catalog, err = h.catalogUC.FetchProducts(r.Context(), domain.ProductFilter{}); err != nil {
			catalog = products
		}
	}

	WriteSuccess(w, http.StatusOK, toHomePageResponse(usecase.NewHomePage(products, catalog)))
}

// getProduct
//
//	@Summary		Страница товара
//	@Description	Состояние страницы товара. Неизвестный товар или сбой сети дают 404 и state=not_found.
//	@Tags			products
//	@Produce		json
//	@Param			id			path		string	true	"ID товара"
//	@Param			tab			query		string	false	"Вкладка: description, usage, reviews"
//	@Param			quantity	query		int		false	"Выбранное количество"
//	@Success		200			{object}	ProductDetailResponse
//	@Failure		404			{object}	ProductDetailResponse
//	@Router			/products/{id} [get]
func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadDetail(w, r, nil)
	if !ok {
		return
	}

	q := r.URL.Query()
	if tab, ok := usecase.ParseDetailTab(q.Get("tab")); ok {
		view.SelectTab(tab)
	}
	if n, err := strconv.Atoi(q.Get("quantity")); err == nil {
		view.SetQuantity(n)
	}

	WriteSuccess(w, http.StatusOK, toProductDetailResponse(view.Snapshot()))
}

// addProductToCart
//
//	@Summary		Добавить товар в корзину со страницы товара
//	@Description	Добавляет товар quantity раз подряд (каждый раз +1). quantity < 1 считается равным 1.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"ID товара"
//	@Param			body	body		QuantityRequest	false	"Количество"
//	@Success		200		{object}	CartResponse
//	@Failure		404		{object}	ProductDetailResponse
//	@Router			/products/{id}/cart [post]
func (h *CatalogHandler) addProductToCart(w http.ResponseWriter, r *http.Request) {
	body := QuantityRequest{Quantity: 1}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
			WriteError(w, err)
			return
		}
	}

	// каждая единица — отдельный AddToCart с уведомлением слушателей
	if body.Quantity > h.maxQuantity {
		h.logger.Warnf("%d quantity %d exceeds limit %d", http.StatusBadRequest, body.Quantity, h.maxQuantity)
		WriteError(w, e.ErrInvalidQuantity)
		return
	}

	cart := h.carts.Get(r.Context(), sessionFromContext(r.Context()))
	view, ok := h.loadDetail(w, r, cart)
	if !ok {
		return
	}

	view.SetQuantity(body.Quantity)
	view.AddToCart()

	WriteSuccess(w, http.StatusOK, toCartResponse(usecase.NewCartView(cart.State())))
}

// loadDetail загружает страницу товара и ждёт завершения загрузки.
// Если товара нет, сам пишет 404 и возвращает false.
func (h *CatalogHandler) loadDetail(w http.ResponseWriter, r *http.Request, cart *usecase.CartStore) (*usecase.ProductDetailView, bool) {
	view := usecase.NewProductDetailView(h.catalogUC, cart, h.logger)

	select {
	case <-view.Load(r.Context(), chi.URLParam(r, "id")):
	case <-r.Context().Done():
		return nil, false
	}

	snapshot := view.Snapshot()
	if snapshot.State != usecase.DetailReady {
		WriteSuccess(w, http.StatusNotFound, toProductDetailResponse(snapshot))
		return nil, false
	}

	return view, true
}
