package redis

import (
	"context"
	"os"
	"testing"

	"github.com/blogdeck/blogdeck/cli/pkg/storage"
	"github.com/blogdeck/blogdeck/cli/pkg/storage/storagetest"
)

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set, skipping Redis tests")
	}

	storagetest.RunConformanceTests(t, func(t *testing.T) storage.Store {
		store, err := New(redisURL)
		if err != nil {
			t.Fatalf("Failed to create Redis store: %v", err)
		}
		for _, key := range []string{"test-setget", "test-overwrite", "test-delete", "test-copy"} {
			store.Delete(context.Background(), key)
		}
		return store
	})
}

func TestRedisBackendRequiresURL(t *testing.T) {
	_, err := storage.NewStoreFromConfig(storage.Config{Backend: storage.BackendRedis})
	if err == nil {
		t.Error("Expected error when redis URL is missing")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("http://localhost:6379"); err == nil {
		t.Error("Expected parse error")
	}
}
