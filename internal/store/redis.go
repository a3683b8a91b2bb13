package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/weather-region-dashboard/internal/weather"
)

const redisKeyPrefix = "weather:series:"

// RedisStore keeps series in Redis as JSON. Keys are written without expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses redisURL, connects and pings the server.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(key weather.CacheKey) string {
	return redisKeyPrefix + key.String()
}

// Get returns the cached series for key.
func (s *RedisStore) Get(ctx context.Context, key weather.CacheKey) (weather.HourlySeries, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return weather.HourlySeries{}, false, nil
	}
	if err != nil {
		return weather.HourlySeries{}, false, err
	}

	var series weather.HourlySeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return weather.HourlySeries{}, false, fmt.Errorf("decode cached series %s: %w", key, err)
	}
	return series, true, nil
}

// Put stores series under key with no expiration.
func (s *RedisStore) Put(ctx context.Context, key weather.CacheKey, series weather.HourlySeries) error {
	raw, err := json.Marshal(series)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(key), raw, 0).Err()
}

// Close closes the Redis client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
