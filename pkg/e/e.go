package e

import (
	"errors"
	"fmt"
)

var (
	// Ошибки каталога
	ErrNotFound = errors.New("not found")
	ErrNetwork  = errors.New("network error")

	// ErrInvalidQuantity описывает неположительное количество.
	// Корзина не возвращает эту ошибку: количество <= 0 удаляет позицию.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = errors.New("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = errors.New("incorrect env variable")

	// 400 Bad Request
	ErrStatusBadRequest     = errors.New("bad request")
	ErrExpectedMultipart    = errors.New("expected multipart/form-data")
	ErrMissingFields        = errors.New("missing required fields")
	ErrProductNameRequired  = errors.New("product name is required")
	ErrCategoryRequired     = errors.New("category is required")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrPricePrecision       = errors.New("price must have at most 2 decimal places")
	ErrTooManyImages        = errors.New("too many images")
	ErrNoImages             = errors.New("no images provided")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid json")

	// 401 Unauthorized
	ErrUnauthorized = errors.New("unauthorized")

	// 500
	ErrInternalServerError = errors.New("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
