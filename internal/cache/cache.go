// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/assetverse/assetverse-backend/internal/config"
)

// NewRedisClient connects to redis and verifies the connection. Callers treat
// a nil client as "caching disabled".
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

// AssetCache keeps the public available-assets listing hot. All methods are
// nil-receiver safe so the service layer works without redis.
type AssetCache struct {
	client *redis.Client
	ttl    time.Duration
}

const availableAssetsKey = "assets:available"

func NewAssetCache(client *redis.Client) *AssetCache {
	if client == nil {
		return nil
	}
	return &AssetCache{client: client, ttl: 30 * time.Second}
}

func (c *AssetCache) GetAvailable(ctx context.Context, dest interface{}) bool {
	if c == nil {
		return false
	}

	data, err := c.client.Get(ctx, availableAssetsKey).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(data, dest) == nil
}

func (c *AssetCache) SetAvailable(ctx context.Context, value interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.client.Set(ctx, availableAssetsKey, data, c.ttl)
}

// Invalidate drops the cached listing after any stock mutation.
func (c *AssetCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	c.client.Del(ctx, availableAssetsKey)
}
