package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CartRepo хранит снимки корзин сессий. TTL продлевается при каждом сохранении,
// поэтому снимок живёт столько же, сколько сессия.
type CartRepo struct {
	client *clients.RedisClient
	conv   converter.CartConverter
	ttl    time.Duration
}

func NewCartRepo(client *clients.RedisClient, ttl time.Duration) *CartRepo {
	return &CartRepo{
		client: client,
		ttl:    ttl,
	}
}

func (c *CartRepo) Load(ctx context.Context, sessionID string) (*domain.CartState, error) {
	data, err := c.client.Client.Get(ctx, c.key(sessionID)).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.CartRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	state, err := c.conv.ToDomain(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return state, nil
}

// Save записывает снимок. Пустая корзина удаляет ключ.
func (c *CartRepo) Save(ctx context.Context, sessionID string, state domain.CartState) error {
	if state.IsEmpty() {
		return c.Delete(ctx, sessionID)
	}

	data, err := json.Marshal(c.conv.ToRedisModel(state))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, c.key(sessionID), data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) key(sessionID string) string {
	return "cart:" + sessionID
}
