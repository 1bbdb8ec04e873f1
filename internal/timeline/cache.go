package timeline

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "timeline:stock:"

// Cache wraps Redis based caching of current-stock reads. A nil cache or
// client degrades to calling the loader directly.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// CurrentStock loads the cached figure for a barcode or populates it using
// the loader. Cache failures fall through to the loader.
func (c *Cache) CurrentStock(ctx context.Context, barcode string, loader func(context.Context) (int64, error)) (int64, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key := stockKeyPrefix + barcode
	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			return v, nil
		}
	} else if err != redis.Nil {
		return loader(ctx)
	}
	v, err := loader(ctx)
	if err != nil {
		return 0, err
	}
	_ = c.client.Set(ctx, key, strconv.FormatInt(v, 10), c.ttl).Err()
	return v, nil
}

// Prime stores a freshly computed figure, refreshing the TTL.
func (c *Cache) Prime(ctx context.Context, barcode string, qty int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, stockKeyPrefix+barcode, strconv.FormatInt(qty, 10), c.ttl).Err()
}

// Invalidate drops the cached figure for a barcode after a stock mutation.
func (c *Cache) Invalidate(ctx context.Context, barcode string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, stockKeyPrefix+barcode).Err()
}
