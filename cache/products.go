package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

const productsKey = "products:all"

// ProductCache is a read-through redis cache for the product listing. A nil
// *ProductCache is valid and disables caching, so callers never branch on
// whether redis is configured.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewProductCache(addr string, ttl time.Duration, log *zap.Logger) *ProductCache {
	if addr == "" {
		return nil
	}
	return &ProductCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
		log: log,
	}
}

func (c *ProductCache) Get(ctx context.Context) ([]models.Product, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, productsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("product cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.log.Warn("product cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (c *ProductCache) Set(ctx context.Context, products []models.Product) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productsKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("product cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing; called after any catalog write.
func (c *ProductCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, productsKey).Err(); err != nil {
		c.log.Warn("product cache invalidation failed", zap.Error(err))
	}
}
