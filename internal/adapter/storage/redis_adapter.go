package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix = "stock:"
	stockKeyTTL    = 1 * time.Hour
)

// refreshStockScript writes the new balance only when the key is still
// cached. Re-creating an evicted key here could race a concurrent
// read-through backfill, so eviction wins.
var refreshStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = ARGV[1]
local ttl = tonumber(ARGV[2])

if redis.call('EXISTS', key) == 1 then
	redis.call('SET', key, quantity, 'EX', ttl)
	return 1
end

return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(orgID, productID string) string {
	return stockKeyPrefix + orgID + ":" + productID
}

func (r *RedisAdapter) GetStock(ctx context.Context, orgID, productID string) (int, bool, error) {
	quantity, err := r.client.Get(ctx, stockKey(orgID, productID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return quantity, true, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, orgID, productID string, quantity int) error {
	return r.client.Set(ctx, stockKey(orgID, productID), quantity, stockKeyTTL).Err()
}

func (r *RedisAdapter) RefreshStock(ctx context.Context, orgID, productID string, quantity int) error {
	key := stockKey(orgID, productID)
	return refreshStockScript.Run(ctx, r.client, []string{key}, quantity, int(stockKeyTTL.Seconds())).Err()
}

func (r *RedisAdapter) DeleteStock(ctx context.Context, orgID, productID string) error {
	return r.client.Del(ctx, stockKey(orgID, productID)).Err()
}
