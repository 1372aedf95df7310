package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kadirpekel/agora/pkg/config"
	"github.com/kadirpekel/agora/pkg/debate"
	"github.com/kadirpekel/agora/pkg/utils"
)

const redisKeyPrefix = "agora:cache:"

// RedisCache is an exact-match response cache backed by Redis, for
// sharing cached panels across processes. Semantic matching is left
// to the in-memory cache; Redis entries expire server-side via TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

type redisEntry struct {
	Query    string                `json:"query"`
	Response *debate.PanelResponse `json:"response"`
	StoredAt time.Time             `json:"stored_at"`
}

// NewRedisCache builds a Redis-backed response cache.
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	if cfg.Redis == nil || cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis cache requires an address")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	slog.Info("Initialized redis response cache",
		"addr", cfg.Redis.Addr,
		"ttl_hours", cfg.TTLHours)

	return &RedisCache{
		client: client,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, query string, queryVector []float32) (*debate.PanelResponse, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+hashQuery(query)).Bytes()
	if err == redis.Nil {
		c.misses.Add(1)
		slog.Info("Cache miss", "query", utils.Truncate(query, 50))
		return nil, false
	}
	if err != nil {
		c.misses.Add(1)
		slog.Warn("Cache lookup failed", "error", err)
		return nil, false
	}

	var entry redisEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.misses.Add(1)
		slog.Warn("Cache entry corrupt", "error", err)
		return nil, false
	}

	c.hits.Add(1)
	slog.Info("Cache hit (exact)", "query", utils.Truncate(query, 50))
	return entry.Response, true
}

func (c *RedisCache) Set(ctx context.Context, query string, queryVector []float32, response *debate.PanelResponse) {
	data, err := json.Marshal(redisEntry{
		Query:    query,
		Response: response,
		StoredAt: time.Now(),
	})
	if err != nil {
		slog.Warn("Failed to encode cache entry", "error", err)
		return
	}

	if err := c.client.Set(ctx, redisKeyPrefix+hashQuery(query), data, c.ttl).Err(); err != nil {
		slog.Warn("Failed to store cache entry", "error", err)
	}
}

func (c *RedisCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Warn("Failed to delete cache entry", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		slog.Warn("Cache clear scan failed", "error", err)
	}

	c.hits.Store(0)
	c.misses.Store(0)
	slog.Info("Cache cleared")
}

func (c *RedisCache) Stats(ctx context.Context) Stats {
	size := 0
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		size++
	}

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Size:          size,
		Hits:          hits,
		Misses:        misses,
		TotalRequests: total,
		HitRate:       rate,
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
