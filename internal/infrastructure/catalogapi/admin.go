package catalogapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

// AdminClient — эндпоинты управления товарами и авторизации админки.
// Токен, полученный в Login, передаётся как Bearer в каждом изменяющем запросе.
type AdminClient struct {
	*Client
}

func NewAdminClient(c *Client) *AdminClient {
	return &AdminClient{Client: c}
}

func (a *AdminClient) Login(ctx context.Context, email, password string) (string, error) {
	const op = "AdminClient.Login"

	var res loginRes
	req := &request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginReq{Email: email, Password: password},
	}
	if err := a.do(ctx, req, &res); err != nil {
		return "", e.Wrap(op, err)
	}

	if strings.TrimSpace(res.Token) == "" {
		return "", e.Wrap(op, e.ErrUnauthorized)
	}

	return res.Token, nil
}

func (a *AdminClient) CreateProduct(ctx context.Context, token string, product *domain.Product) (*domain.Product, error) {
	const op = "AdminClient.CreateProduct"

	var dto productDTO
	req := &request{method: http.MethodPost, path: "/products", token: token, body: fromDomain(product)}
	if err := a.do(ctx, req, &dto); err != nil {
		return nil, e.Wrap(op, err)
	}

	return a.merge(product, dto), nil
}

func (a *AdminClient) UpdateProduct(ctx context.Context, token string, product *domain.Product) (*domain.Product, error) {
	const op = "AdminClient.UpdateProduct"

	var dto productDTO
	req := &request{
		method: http.MethodPut,
		path:   "/products/" + url.PathEscape(product.ID),
		token:  token,
		body:   fromDomain(product),
	}
	if err := a.do(ctx, req, &dto); err != nil {
		return nil, e.Wrap(op, err)
	}

	return a.merge(product, dto), nil
}

func (a *AdminClient) DeleteProduct(ctx context.Context, token string, id string) error {
	const op = "AdminClient.DeleteProduct"

	req := &request{method: http.MethodDelete, path: "/products/" + url.PathEscape(id), token: token}
	if err := a.do(ctx, req, nil); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// merge берёт ответ API, а если API ответил пустым телом, то отправленные данные.
func (a *AdminClient) merge(sent *domain.Product, dto productDTO) *domain.Product {
	got := toDomain(dto)
	if got.ID == "" {
		res := *sent
		return &res
	}
	return &got
}
