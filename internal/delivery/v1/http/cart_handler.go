package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	eventsBufferSize  = 32
	heartbeatInterval = 15 * time.Second
)

type CartHandler struct {
	catalogUC   usecase.CatalogUC
	carts       usecase.CartSessionsUC
	maxQuantity int
	logger      logger.Logger
}

func NewCartHandler(catalogUC usecase.CatalogUC, carts usecase.CartSessionsUC, maxQuantity int, logger logger.Logger) *CartHandler {
	return &CartHandler{catalogUC: catalogUC, carts: carts, maxQuantity: maxQuantity, logger: logger}
}

func (h *CartHandler) cart(r *http.Request) *usecase.CartStore {
	return h.carts.Get(r.Context(), sessionFromContext(r.Context()))
}

func (h *CartHandler) writeCart(w http.ResponseWriter, cart *usecase.CartStore) {
	WriteSuccess(w, http.StatusOK, toCartResponse(usecase.NewCartView(cart.State())))
}

// getCart
//
//	@Summary	Корзина текущей сессии
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Router		/cart [get]
func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, h.cart(r))
}

// addItem
//
//	@Summary		Добавить товар из карточки
//	@Description	Добавляет одну единицу товара; если строка уже есть, увеличивает её количество.
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddItemRequest	true	"Товар"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart/items [post]
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var body AddItemRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}
	if body.ProductID == "" {
		WriteError(w, e.ErrMissingFields)
		return
	}

	product, err := h.catalogUC.FetchProduct(r.Context(), body.ProductID)
	if err != nil || product == nil {
		h.logger.Warnf("product %q can't be added to cart: %v", body.ProductID, err)
		WriteError(w, e.ErrNotFound)
		return
	}

	cart := h.cart(r)
	cart.AddToCart(*product)
	h.writeCart(w, cart)
}

// updateItem
//
//	@Summary		Изменить количество строки
//	@Description	quantity <= 0 удаляет строку. Неизвестный товар игнорируется.
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"ID товара"
//	@Param			body	body		QuantityRequest	true	"Количество"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/cart/items/{id} [patch]
func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var body QuantityRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	if body.Quantity > h.maxQuantity {
		h.logger.Warnf("%d quantity %d exceeds limit %d", http.StatusBadRequest, body.Quantity, h.maxQuantity)
		WriteError(w, e.ErrInvalidQuantity)
		return
	}

	cart := h.cart(r)
	cart.UpdateQuantity(chi.URLParam(r, "id"), body.Quantity)
	h.writeCart(w, cart)
}

// incrementItem
//
//	@Summary	Кнопка «+» строки корзины
//	@Tags		cart
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	CartResponse
//	@Router		/cart/items/{id}/increment [post]
func (h *CartHandler) incrementItem(w http.ResponseWriter, r *http.Request) {
	cart := h.cart(r)
	usecase.IncrementLine(cart, chi.URLParam(r, "id"))
	h.writeCart(w, cart)
}

// decrementItem
//
//	@Summary	Кнопка «−» строки корзины
//	@Tags		cart
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	CartResponse
//	@Router		/cart/items/{id}/decrement [post]
func (h *CartHandler) decrementItem(w http.ResponseWriter, r *http.Request) {
	cart := h.cart(r)
	usecase.DecrementLine(cart, chi.URLParam(r, "id"))
	h.writeCart(w, cart)
}

// removeItem
//
//	@Summary	Удалить строку корзины
//	@Tags		cart
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	CartResponse
//	@Router		/cart/items/{id} [delete]
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	cart := h.cart(r)
	cart.RemoveFromCart(chi.URLParam(r, "id"))
	h.writeCart(w, cart)
}

// clearCart
//
//	@Summary	Очистить корзину
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Router		/cart [delete]
func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	cart := h.cart(r)
	cart.ClearCart()
	h.writeCart(w, cart)
}

// streamEvents
//
//	@Summary		Поток изменений корзины (SSE)
//	@Description	Первое событие — текущее состояние, далее по одному событию на каждое изменение корзины.
//	@Tags			cart
//	@Produce		text/event-stream
//	@Success		200
//	@Router			/cart/events [get]
func (h *CartHandler) streamEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// поток живёт дольше WriteTimeout сервера
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debugf("can't reset write deadline for event stream: %v", err)
	}

	cart := h.cart(r)
	updates := make(chan domain.CartState, eventsBufferSize)
	unsubscribe := cart.Subscribe(func(state domain.CartState) {
		select {
		case updates <- state:
		default:
			h.logger.Warnf("cart event stream is lagging, dropping version %d", state.Version)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := h.writeEvent(w, rc, cart.State()); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case state := <-updates:
			if err := h.writeEvent(w, rc, state); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func (h *CartHandler) writeEvent(w http.ResponseWriter, rc *http.ResponseController, state domain.CartState) error {
	data, err := json.Marshal(toCartResponse(usecase.NewCartView(state)))
	if err != nil {
		return e.Wrap("CartHandler.writeEvent", err)
	}

	if _, err := fmt.Fprintf(w, "id: %d\nevent: cart\ndata: %s\n\n", state.Version, data); err != nil {
		return err
	}

	return rc.Flush()
}
