package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminUC usecase.AdminUC
	logger  logger.Logger
}

func NewAdminHandler(adminUC usecase.AdminUC, logger logger.Logger) *AdminHandler {
	return &AdminHandler{adminUC: adminUC, logger: logger}
}

// login
//
//	@Summary		Вход в админку
//	@Description	Проверку учётных данных выполняет API каталога; в ответе его токен.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Учётные данные"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/admin/login [post]
func (a *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	token, err := a.adminUC.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		a.logger.Warnf("admin login failed: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, LoginResponse{Token: token})
}

// dashboard
//
//	@Summary	Сводка админки
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	DashboardResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	502	{object}	ErrorResponse
//	@Router		/admin/dashboard [get]
func (a *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.adminUC.Dashboard(r.Context())
	if err != nil {
		a.logger.Errorf(err, "failed to build dashboard")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toDashboardResponse(d))
}

// listProducts
//
//	@Summary	Список товаров админки
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		category	query		string	false	"Категория"
//	@Param		q			query		string	false	"Поиск"
//	@Success	200			{array}		ProductResponse
//	@Failure	502			{object}	ErrorResponse
//	@Router		/admin/products [get]
func (a *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.adminUC.ListProducts(r.Context(), productFilterFromQuery(r))
	if err != nil {
		a.logger.Errorf(err, "failed to list products")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductResponse(products))
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Принимает multipart/form-data с изображениями или JSON с готовым URL изображения
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			name		formData	string	true	"Название товара"
//	@Param			category	formData	string	true	"Категория"
//	@Param			price		formData	number	true	"Цена"
//	@Param			description	formData	string	false	"Описание"
//	@Param			usage		formData	string	false	"Способ применения"
//	@Param			benefits	formData	[]string	false	"Преимущества"
//	@Param			images		formData	file	false	"Изображения товара"
//	@Success		201			{object}	ProductResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Router			/admin/products [post]
func (a *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	req, err := parseSaveProduct(w, r)
	if err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := a.adminUC.CreateProduct(r.Context(), token, req)
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// updateProduct
//
//	@Summary		Изменение товара
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"ID товара"
//	@Success		200	{object}	ProductResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/admin/products/{id} [put]
func (a *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	req, err := parseSaveProduct(w, r)
	if err != nil {
		a.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	product, err := a.adminUC.UpdateProduct(r.Context(), token, chi.URLParam(r, "id"), req)
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		id	path	string	true	"ID товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/products/{id} [delete]
func (a *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := a.adminUC.DeleteProduct(r.Context(), token, chi.URLParam(r, "id")); err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
