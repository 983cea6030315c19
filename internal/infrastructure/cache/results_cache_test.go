package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/domain/service/pathfinder"
	"currency_flip/internal/infrastructure/cache"
)

type memoryStore struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}

	value, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(value, nil)
}

func (m *memoryStore) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}

	m.values[key] = string(value.([]byte))
	m.ttls[key] = expiration

	return redis.NewStatusResult("OK", nil)
}

func TestResultsCache(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := newMemoryStore()
	c := cache.NewResultsCache(store).WithTTL(10 * time.Minute)

	_, err := c.GetResults(ctx, "Standard")
	rq.ErrorIs(err, market.ErrResultsNotCached)

	results := pathfinder.Results{
		"Chaos Orb": {{
			From:     "Chaos Orb",
			To:       "Chaos Orb",
			Starting: 4,
			Ending:   8,
			Winnings: 4,
			Transactions: []entity.Edge{{
				Offer:    entity.Offer{League: "Standard", Have: "Chaos Orb", Want: "Chaos Orb", Counterparty: "A", ConversionRate: 2, Stock: 8},
				Paid:     4,
				Received: 8,
			}},
		}},
	}

	rq.NoError(c.SetResults(ctx, "Standard", results))
	rq.Equal(10*time.Minute, store.ttls["flip:results:Standard"])

	got, err := c.GetResults(ctx, "Standard")
	rq.NoError(err)
	rq.Equal(results, got)

	_, err = c.GetResults(ctx, "Hardcore")
	rq.ErrorIs(err, market.ErrResultsNotCached)
}

func TestResultsCacheUnavailable(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	errDown := errors.New("connection refused")
	store := newMemoryStore()
	store.err = errDown

	c := cache.NewResultsCache(store)

	_, err := c.GetResults(ctx, "Standard")
	rq.ErrorIs(err, errDown)
	rq.NotErrorIs(err, market.ErrResultsNotCached)

	rq.ErrorIs(c.SetResults(ctx, "Standard", pathfinder.Results{}), errDown)
}
