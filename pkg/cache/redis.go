package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the production cache backend.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a client for addr and verifies it with a ping.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(key string, dest interface{}) bool {
	val, err := s.client.Get(context.Background(), key).Result()
	if err != nil {
		return false
	}

	return json.Unmarshal([]byte(val), dest) == nil
}

func (s *RedisStore) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.client.Set(context.Background(), key, data, ttl).Err()
}

func (s *RedisStore) Del(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(context.Background(), keys...).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
