package store

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/5nufkin/Rarebnb-backend/domain"
)

const cacheTTL = 10 * time.Minute

type StayRedisCache struct {
	client *redis.Client
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewStayRedisCache(client *redis.Client, tracer trace.Tracer, logger *logrus.Logger) domain.StayCache {
	return &StayRedisCache{
		client: client,
		tracer: tracer,
		logger: logger,
	}
}

func (cache *StayRedisCache) PostCacheData(ctx context.Context, key string, value string) error {
	ctx, span := cache.tracer.Start(ctx, "StayRedisCache.PostCacheData")
	defer span.End()

	result := cache.client.Set(key, value, cacheTTL)
	if result.Err() != nil {
		span.SetStatus(codes.Error, "Error posting cached value")
		cache.logger.Errorf("redis set error: %s", result.Err())
		return result.Err()
	}

	return nil
}

func (cache *StayRedisCache) GetCachedValue(ctx context.Context, key string) (string, error) {
	ctx, span := cache.tracer.Start(ctx, "StayRedisCache.GetCachedValue")
	defer span.End()

	result := cache.client.Get(key)
	value, err := result.Result()
	if err != nil {
		span.SetStatus(codes.Error, "Error getting cached value")
		return "", err
	}
	return value, nil
}

func (cache *StayRedisCache) DelCachedValue(ctx context.Context, key string) error {
	ctx, span := cache.tracer.Start(ctx, "StayRedisCache.DelCachedValue")
	defer span.End()

	result := cache.client.Del(key)
	if result.Err() != nil {
		span.SetStatus(codes.Error, "Error deleting cached value")
		cache.logger.Errorf("redis del error: %s", result.Err())
		return result.Err()
	}

	return nil
}
