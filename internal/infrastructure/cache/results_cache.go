package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/domain/service/pathfinder"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	DefaultResultsTTL = time.Hour

	keyPrefix = "flip:results:"
)

type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// ResultsCache хранит результаты последнего сканирования лиги в Redis.
type ResultsCache struct {
	client store
	ttl    time.Duration
}

func NewResultsCache(client store) *ResultsCache {
	return &ResultsCache{client: client, ttl: DefaultResultsTTL}
}

func (c *ResultsCache) WithTTL(ttl time.Duration) *ResultsCache {
	c.ttl = ttl
	return c
}

func (c *ResultsCache) SetResults(ctx context.Context, league string, results pathfinder.Results) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.client.Set(ctx, key(league), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", err)
	}

	return nil
}

func (c *ResultsCache) GetResults(ctx context.Context, league string) (pathfinder.Results, error) {
	data, err := c.client.Get(ctx, key(league)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, market.ErrResultsNotCached
		}
		return nil, fmt.Errorf("redis.Get: %w", err)
	}

	var results pathfinder.Results
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return results, nil
}

func key(league string) string {
	return keyPrefix + league
}
