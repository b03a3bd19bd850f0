package preference

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the preference under "pref:<owner>:selectedRoom".
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisClient connects to url, e.g. redis://localhost:6379/0.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewRedisStore(client *redis.Client, owner string) *RedisStore {
	if owner == "" {
		owner = "default"
	}
	return &RedisStore{client: client, key: "pref:" + owner + ":" + Key}
}

// Client exposes the underlying connection for health checks and locks.
func (s *RedisStore) Client() *redis.Client { return s.client }

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	room, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return DefaultRoom, nil
	}
	if err != nil {
		return "", fmt.Errorf("get preference: %w", err)
	}
	if room == "" {
		return DefaultRoom, nil
	}
	return room, nil
}

func (s *RedisStore) Set(ctx context.Context, room string) error {
	room, err := normalizeRoom(room)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, room, 0).Err(); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}
