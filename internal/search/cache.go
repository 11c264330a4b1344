package search

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zfogg/citysearch/internal/config"
	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/metrics"
	"go.uber.org/zap"
)

const cityCachePrefix = "cities"

// CityResults is a cacheable page of city hits
type CityResults struct {
	Cities []CityHit `json:"cities"`
	Total  int64     `json:"total"`
}

// CityCache caches city search results in Redis. With no Redis configured
// every call goes straight to the loader.
type CityCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCityCache connects to REDIS_URL. An empty URL or a failed ping yields a
// passthrough cache unless required is set.
func NewCityCache(ctx context.Context, cfg config.RedisConfig, required bool) (*CityCache, error) {
	if cfg.URL == "" {
		if required {
			return nil, fmt.Errorf("REDIS_URL is required")
		}
		return &CityCache{ttl: cfg.CacheTTL}, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		if required {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		logger.Log.Warn("Redis ping failed, city search will work without caching", zap.Error(err))
		return &CityCache{ttl: cfg.CacheTTL}, nil
	}

	return NewCityCacheWithClient(rdb, cfg.CacheTTL), nil
}

// NewCityCacheWithClient wraps an existing Redis client
func NewCityCacheWithClient(rdb *redis.Client, ttl time.Duration) *CityCache {
	return &CityCache{redis: rdb, ttl: ttl}
}

// Enabled reports whether results are actually cached
func (c *CityCache) Enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

// cacheKey generates a cache key for the search parameters
func (c *CityCache) cacheKey(kind string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("search:%s:%s:%x", cityCachePrefix, kind, hash)
}

// Cities returns the cached result for params or calls load and caches it
func (c *CityCache) Cities(ctx context.Context, kind string, params interface{}, load func(context.Context) (*CityResults, error)) (*CityResults, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	m := metrics.Get()
	key := c.cacheKey(kind, params)
	cached, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var result CityResults
		if err := json.Unmarshal(cached, &result); err == nil {
			m.CacheHitsTotal.WithLabelValues(cityCachePrefix).Inc()
			return &result, nil
		}
	} else if err != redis.Nil {
		logger.Log.Debug("city cache read failed", zap.String("key", key), zap.Error(err))
	}
	m.CacheMissesTotal.WithLabelValues(cityCachePrefix).Inc()

	result, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Log.Debug("city cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

// Invalidate drops every cached city result. It runs after a reindex.
func (c *CityCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	pattern := fmt.Sprintf("search:%s:*", cityCachePrefix)
	var cursor uint64
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping checks the Redis connection. A passthrough cache is always healthy.
func (c *CityCache) Ping(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

// Close releases the Redis connection
func (c *CityCache) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
