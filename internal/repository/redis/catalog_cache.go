package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"kumbam-backend/internal/client"
	"kumbam-backend/internal/models"
	"kumbam-backend/internal/util"
)

const (
	hallsKey      = "catalog:halls"
	categoriesKey = "catalog:categories"
	catalogTTL    = 5 * time.Minute
)

// CatalogCache keeps the venue catalog in Redis so list reads do not hit
// Scylla on every request. Cache failures are logged and swallowed; the
// caller falls through to the repository.
type CatalogCache struct {
	redis *client.RedisClient
}

func NewCatalogCache(redisClient *client.RedisClient) *CatalogCache {
	return &CatalogCache{redis: redisClient}
}

// GetHalls returns the cached hall list, or (nil, false) on miss or error.
func (c *CatalogCache) GetHalls(ctx context.Context) ([]*models.BanquetHall, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, hallsKey)
	if err != nil {
		if !errors.Is(err, client.ErrCacheMiss) {
			util.Warn("Catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var halls []*models.BanquetHall
	if err := json.Unmarshal([]byte(raw), &halls); err != nil {
		util.Warn("Catalog cache entry corrupt, dropping",
			zap.String("key", hallsKey),
			zap.Error(err))
		_ = c.redis.Del(ctx, hallsKey)
		return nil, false
	}

	return halls, true
}

func (c *CatalogCache) SetHalls(ctx context.Context, halls []*models.BanquetHall) {
	if c == nil || c.redis == nil {
		return
	}

	raw, err := json.Marshal(halls)
	if err != nil {
		util.Warn("Failed to marshal catalog for cache", zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, hallsKey, raw, catalogTTL); err != nil {
		util.Warn("Catalog cache write failed", zap.Error(err))
	}
}

// GetCategories returns the cached category list, or (nil, false) on miss.
func (c *CatalogCache) GetCategories(ctx context.Context) ([]string, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, categoriesKey)
	if err != nil {
		if !errors.Is(err, client.ErrCacheMiss) {
			util.Warn("Category cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var categories []string
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		util.Warn("Category cache entry corrupt, dropping",
			zap.String("key", categoriesKey),
			zap.Error(err))
		_ = c.redis.Del(ctx, categoriesKey)
		return nil, false
	}

	return categories, true
}

func (c *CatalogCache) SetCategories(ctx context.Context, categories []string) {
	if c == nil || c.redis == nil {
		return
	}

	raw, err := json.Marshal(categories)
	if err != nil {
		util.Warn("Failed to marshal categories for cache", zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, categoriesKey, raw, catalogTTL); err != nil {
		util.Warn("Category cache write failed", zap.Error(err))
	}
}

// InvalidateHalls drops both catalog keys after a hall is created.
func (c *CatalogCache) InvalidateHalls(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, hallsKey, categoriesKey); err != nil {
		util.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
