package credit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// balanceKeyPrefix namespaces balance keys in the shared Redis instance.
const balanceKeyPrefix = "tenantgrid:balance:"

// RedisStore reads per-tenant balances maintained by the billing pipeline.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore wraps a Redis client as a balance source.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Balance returns the tenant's available credit. A tenant with no balance
// key is treated as holding zero credit.
func (s *RedisStore) Balance(ctx context.Context, tenantID string) (float64, error) {
	val, err := s.client.Get(ctx, balanceKeyPrefix+tenantID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance for %s: %w", tenantID, err)
	}
	balance, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance for %s: %w", tenantID, err)
	}
	return balance, nil
}

// SetBalance writes a tenant's balance; used by tests and admin tooling.
func (s *RedisStore) SetBalance(ctx context.Context, tenantID string, balance float64) error {
	return s.client.Set(ctx, balanceKeyPrefix+tenantID, strconv.FormatFloat(balance, 'f', -1, 64), 0).Err()
}
