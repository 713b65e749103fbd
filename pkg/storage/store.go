package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("not found")

// Store is the durable key/value storage that survives between runs.
// Values are opaque bytes; callers choose the encoding.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Health check
	Ping(ctx context.Context) error

	Close() error
}

// Backend names a storage implementation
type Backend string

const (
	// BackendFile keeps one JSON file per key in a directory
	BackendFile Backend = "file"
	// BackendMemory keeps values for the life of the process
	BackendMemory Backend = "memory"
	// BackendRedis stores values in a Redis database
	BackendRedis Backend = "redis"
)

// Config holds configuration for creating a Store instance
type Config struct {
	Backend Backend

	// Dir is the directory used by the file backend
	Dir string

	// RedisURL is the connection string for Redis (required when Backend is "redis")
	// Format: redis://localhost:6379/0 or redis://:password@localhost:6379/1
	RedisURL string
}

// StoreFactory defines a function that creates a Store instance
type StoreFactory func(cfg Config) (Store, error)

var factories = make(map[Backend]StoreFactory)

// RegisterBackend registers a store factory for a given backend
func RegisterBackend(backend Backend, factory StoreFactory) {
	factories[backend] = factory
}

// NewStoreFromConfig creates a new Store for the configured backend. An empty
// backend selects the file store.
func NewStoreFromConfig(cfg Config) (Store, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendFile
	}

	factory, exists := factories[cfg.Backend]
	if !exists {
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: %s, %s, %s)",
			cfg.Backend, BackendFile, BackendMemory, BackendRedis)
	}
	return factory(cfg)
}
