package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blogdeck/blogdeck/cli/pkg/storage"
)

// KeyPrefix namespaces every key so a shared database stays readable
const KeyPrefix = "blogdeck:"

// Store is a Redis-backed implementation of storage.Store
type Store struct {
	client *redis.Client
}

// New connects to redisURL and verifies the connection
func New(redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	return value, err
}

// Set stores value without expiry; sessions end on logout or a 401, not on a timer
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, KeyPrefix+key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, KeyPrefix+key).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
