package service

import (
	"context"
	"course_backend/internal/model"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const catalogCacheKey = "course:catalog"

// CatalogCache holds the public module list.
type CatalogCache interface {
	Get(ctx context.Context) ([]model.Module, bool)
	Set(ctx context.Context, modules []model.Module) error
	Invalidate(ctx context.Context) error
}

type RedisCatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogCache returns a Redis backed cache, or one that never hits when
// rdb is nil.
func NewCatalogCache(rdb *redis.Client, ttl time.Duration) CatalogCache {
	if rdb == nil {
		return noopCatalogCache{}
	}
	return &RedisCatalogCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCatalogCache) Get(ctx context.Context) ([]model.Module, bool) {
	data, err := c.rdb.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var modules []model.Module
	if err := json.Unmarshal(data, &modules); err != nil {
		return nil, false
	}
	return modules, true
}

func (c *RedisCatalogCache) Set(ctx context.Context, modules []model.Module) error {
	data, err := json.Marshal(modules)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, catalogCacheKey, data, c.ttl).Err()
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, catalogCacheKey).Err()
}

type noopCatalogCache struct{}

func (noopCatalogCache) Get(context.Context) ([]model.Module, bool) { return nil, false }
func (noopCatalogCache) Set(context.Context, []model.Module) error { return nil }
func (noopCatalogCache) Invalidate(context.Context) error { return nil }
