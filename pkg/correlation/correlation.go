// Package correlation переносит идентификатор запроса через контекст
// от HTTP-обработчика до клиентов внешних сервисов.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

// Header — заголовок, в котором передаётся идентификатор.
const Header = "X-Correlation-Id"

type ctxKey struct{}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext возвращает идентификатор из контекста или пустую строку.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func NewID() string {
	return uuid.NewString()
}
