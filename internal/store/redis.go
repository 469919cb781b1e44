package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// RedisStore keeps the history as a JSON list under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps an existing client. An empty key uses HistoryKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = HistoryKey
	}
	return &RedisStore{client: client, key: key}
}

// ConnectRedis parses url and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", weather.ErrStorageUnavailable, err)
	}
	return client, nil
}

func (s *RedisStore) LoadHistory(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", weather.ErrStorageUnavailable, s.key, err)
	}
	return entries, nil
}

func (s *RedisStore) SaveHistory(ctx context.Context, entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisStore) ClearHistory(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	return nil
}
