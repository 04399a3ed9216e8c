package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"arequita-backend/internal/pkg/config"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
)

func Connect(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errs.Wrap(err, "ping redis")
	}

	cleanup := func() { _ = client.Close() }
	return client, cleanup, nil
}

const catalogKeyPrefix = "catalog:"

// CatalogCache keeps rendered catalog pages in redis. Every failure
// degrades to a miss; the catalog must survive redis being down.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCatalogCache(client *redis.Client, cfg config.RedisConfig, logger *slog.Logger) *CatalogCache {
	return &CatalogCache{client: client, ttl: cfg.CatalogTTL, logger: logger}
}

func (c *CatalogCache) Get(ctx context.Context, key string) ([]queries.ServiceCatalogItem, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog cache get failed", slog.String("error", err.Error()))
		}
		return nil, false
	}
	var items []queries.ServiceCatalogItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn("catalog cache decode failed", slog.String("error", err.Error()))
		return nil, false
	}
	return items, true
}

func (c *CatalogCache) Set(ctx context.Context, key string, items []queries.ServiceCatalogItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache set failed", slog.String("error", err.Error()))
	}
}

// Invalidate drops every cached catalog page. Called after writes that
// move a unit; TTL expiry covers everything else.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, catalogKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("catalog cache scan failed", slog.String("error", err.Error()))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("catalog cache invalidate failed", slog.String("error", err.Error()))
	}
}
