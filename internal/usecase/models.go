package usecase

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ADMIN USECASE

// SaveProductReq — запрос на создание или изменение товара из админки.
type SaveProductReq struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	Description string
	Usage       string
	Benefits    []string
	Image       string         // готовый URL, если изображения не загружаются
	Images      []ProductImage // загруженные через multipart файлы
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type, определённый по содержимому (image/jpeg)
	Name     string // оригинальное имя файла (для логов и ключа объекта)
}

// Dashboard — сводка для главной страницы админки.
type Dashboard struct {
	ProductsCount   int
	CategoriesCount int
	Categories      []domain.CategorySummary
}

// INFRASTRUCTURE

// UploadImagesReq — запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Prefix string
	Images []ProductImage
}

// UploadImagesRes — ключи загруженных объектов в порядке исходных изображений.
type UploadImagesRes struct {
	ImagesKeys []string
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	Failed     OutboxStatus = "failed"
)

type OutboxEventType string

const (
	ProductCreated OutboxEventType = "product.created"
	ProductUpdated OutboxEventType = "product.updated"
	ProductDeleted OutboxEventType = "product.deleted"
)

// OutboxEvent — событие аудита, ожидающее отправки в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewSaveProductReq(name string, price decimal.Decimal, category string, images []ProductImage) *SaveProductReq {
	return &SaveProductReq{
		Name:     name,
		Price:    price,
		Category: category,
		Images:   images,
	}
}

func NewProductImage(data []byte, mimeType string, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Name:     name,
	}
}

func NewUploadImagesReq(prefix string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Prefix: prefix,
		Images: images,
	}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{ImagesKeys: imagesKeys}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, productID string, payload []byte, createdAt time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ProductID: productID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: createdAt,
	}
}
