package redis

import (
	"fmt"

	"github.com/blogdeck/blogdeck/cli/pkg/storage"
)

func init() {
	storage.RegisterBackend(storage.BackendRedis, func(cfg storage.Config) (storage.Store, error) {
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis URL is required when backend is 'redis'")
		}
		return New(cfg.RedisURL)
	})
}
