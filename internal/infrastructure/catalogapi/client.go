package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/correlation"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
)

// maxErrorBody ограничивает тело ответа с ошибкой, попадающее в лог.
const maxErrorBody = 512

// Client — HTTP-клиент удалённого API каталога.
// Ошибки транспорта и 5xx повторяются с экспоненциальной задержкой; 4xx не повторяются.
type Client struct {
	baseURL     string
	http        *http.Client
	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
	logger      logger.Logger
}

func NewClient(cfg *cfg.CatalogCfg, logger logger.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		logger:      logger,
	}
}

// FetchProduct возвращает товар или e.ErrNotFound / e.ErrNetwork.
func (c *Client) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "Client.FetchProduct"

	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.ErrNotFound)
	}

	var dto productDTO
	if err := c.do(ctx, &request{method: http.MethodGet, path: "/products/" + url.PathEscape(id)}, &dto); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := toDomain(dto)
	// Пустой ответ считается отсутствием товара
	if product.ID == "" {
		return nil, e.Wrap(op, e.ErrNotFound)
	}

	return &product, nil
}

// FetchProducts возвращает список товаров. Пустой список — не ошибка.
func (c *Client) FetchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	const op = "Client.FetchProducts"

	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query.Set("q", q)
	}

	var raw json.RawMessage
	if err := c.do(ctx, &request{method: http.MethodGet, path: "/products", query: query}, &raw); err != nil {
		return nil, e.Wrap(op, err)
	}

	dtos, err := decodeProducts(raw)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return toArrDomain(dtos), nil
}

// decodeProducts принимает как голый массив, так и {"products": [...]}.
// Объект без ключа products считается ошибкой ответа, а не пустым каталогом.
func decodeProducts(raw json.RawMessage) ([]productDTO, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []productDTO{}, nil
	}

	if trimmed[0] == '[' {
		var dtos []productDTO
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, fmt.Errorf("%w: decode products: %w", e.ErrNetwork, err)
		}
		return dtos, nil
	}

	var env productsEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: decode products: %w", e.ErrNetwork, err)
	}
	if env.Products == nil {
		return nil, fmt.Errorf("%w: unexpected products response: %.64s", e.ErrNetwork, trimmed)
	}
	return *env.Products, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// retryable — повторять ли запрос при временной ошибке. POST не идемпотентен.
func (r *request) retryable() bool {
	return r.method != http.MethodPost
}

// do выполняет запрос с повторами и декодирует JSON-ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, req *request, out any) error {
	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	attempts := 1
	if req.retryable() {
		attempts += max(c.maxRetries, 0)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := jitter.ExponentialBackoff(c.backoffBase, c.backoffMax, attempt-1, jitter.DefaultJitter)
			c.logger.Debugf("retrying %s %s in %v (attempt %d): %v", req.method, req.path, delay, attempt+1, lastErr)

			if err := jitter.Sleep(ctx, delay); err != nil {
				return fmt.Errorf("%w: %w", e.ErrNetwork, err)
			}
		}

		err := c.once(ctx, req, payload, out)
		if err == nil {
			return nil
		}

		var temp *temporaryError
		if !errors.As(err, &temp) {
			return err
		}
		lastErr = temp.err
	}

	c.logger.Warnf("%s %s failed after %d attempts: %v", req.method, req.path, attempts, lastErr)
	return lastErr
}

// temporaryError помечает ошибку, после которой запрос можно повторить.
type temporaryError struct {
	err error
}

func (t *temporaryError) Error() string { return t.err.Error() }

func (t *temporaryError) Unwrap() error { return t.err }

func (c *Client) once(ctx context.Context, req *request, payload []byte, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if id := correlation.FromContext(ctx); id != "" {
		httpReq.Header.Set(correlation.Header, id)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Отмена вызывающим не повторяется
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", e.ErrNetwork, ctx.Err())
		}
		return &temporaryError{err: fmt.Errorf("%w: %w", e.ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: decode %s: %w", e.ErrNetwork, req.path, err)
	}

	return nil
}

// statusError переводит HTTP-статус в ошибку приложения.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", e.ErrNotFound, detail)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", e.ErrUnauthorized, detail)
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return &temporaryError{err: fmt.Errorf("%w: %s", e.ErrNetwork, detail)}
	default:
		return fmt.Errorf("%w: %s", e.ErrStatusBadRequest, detail)
	}
}
