package kafka

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// CartEventsPublisher отправляет снимок корзины после каждого изменения.
// Ключ сообщения — идентификатор сессии, поэтому события одной корзины попадают в одну партицию по порядку.
type CartEventsPublisher struct {
	producer usecase.MessageProducer
	now      func() time.Time
}

func NewCartEventsPublisher(producer usecase.MessageProducer) *CartEventsPublisher {
	return &CartEventsPublisher{
		producer: producer,
		now:      time.Now,
	}
}

func (c *CartEventsPublisher) PublishCartUpdated(ctx context.Context, sessionID string, state domain.CartState) error {
	payload, err := c.GetPayloadBytes(sessionID, state)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return c.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(sessionID, payload))
}

// GetPayloadBytes кодирует событие как google.protobuf.Struct.
func (c *CartEventsPublisher) GetPayloadBytes(sessionID string, state domain.CartState) ([]byte, error) {
	event, err := cartEventStruct(uuid.NewString(), sessionID, state, c.now())
	if err != nil {
		return nil, err
	}

	return proto.Marshal(event)
}

func cartEventStruct(eventID, sessionID string, state domain.CartState, at time.Time) (*structpb.Struct, error) {
	items := make([]any, 0, len(state.Items))
	for _, it := range state.Items {
		items = append(items, map[string]any{
			"id":         it.ID,
			"name":       it.Name,
			"price":      it.Price.StringFixed(2),
			"quantity":   it.Quantity,
			"line_total": it.LineTotal().StringFixed(2),
		})
	}

	return structpb.NewStruct(map[string]any{
		"event_id":        eventID,
		"event_timestamp": at.UnixNano(),
		"session_id":      sessionID,
		"version":         state.Version,
		"items":           items,
		"items_count":     state.ItemsCount(),
		"total_price":     state.TotalPrice().StringFixed(2),
	})
}
