package mlclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"valuation_service/internal/domain/model"
)

const cacheKeyPrefix = "valuation:predict:"

// CachedPredictor keeps base model outputs in Redis. A nil client disables
// caching, and Redis errors fall through to the wrapped predictor.
type CachedPredictor struct {
	next   model.Predictor
	client *redis.Client
	ttl    time.Duration
	tag    string
}

// NewCachedPredictor wraps next. tag separates keys of different model
// versions.
func NewCachedPredictor(next model.Predictor, client *redis.Client, ttl time.Duration, tag string) *CachedPredictor {
	return &CachedPredictor{next: next, client: client, ttl: ttl, tag: tag}
}

// NewRedisClient connects to redisURL. It returns nil when the URL is empty
// or the server does not answer, so callers run without a cache.
func NewRedisClient(ctx context.Context, redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		zap.L().Warn("invalid REDIS_URL, skipping prediction cache", zap.Error(err))
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis ping failed, skipping prediction cache", zap.Error(err))
		client.Close()
		return nil
	}
	return client
}

// CacheKey rounds the features so that float noise does not split entries.
func (c *CachedPredictor) CacheKey(features model.FeatureVector) string {
	parts := make([]string, 0, len(model.FeatureColumns))
	for _, v := range features.Slice() {
		parts = append(parts, strconv.FormatFloat(v, 'f', 4, 64))
	}
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, c.tag, strings.Join(parts, ","))
}

func (c *CachedPredictor) Predict(ctx context.Context, features model.FeatureVector) (float64, error) {
	if c.client == nil {
		return c.next.Predict(ctx, features)
	}

	key := c.CacheKey(features)
	cached, err := c.client.Get(ctx, key).Float64()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		zap.L().Debug("prediction cache read failed", zap.String("key", key), zap.Error(err))
	}

	price, err := c.next.Predict(ctx, features)
	if err != nil {
		return 0, err
	}
	if err := c.client.Set(ctx, key, price, c.ttl).Err(); err != nil {
		zap.L().Debug("prediction cache write failed", zap.String("key", key), zap.Error(err))
	}
	return price, nil
}
