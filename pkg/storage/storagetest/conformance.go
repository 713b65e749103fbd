// Package storagetest provides conformance tests for storage.Store implementations
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/blogdeck/blogdeck/cli/pkg/storage"
)

// StoreFactory creates a fresh Store instance for testing
type StoreFactory func(t *testing.T) storage.Store

// RunConformanceTests runs all conformance tests against a Store implementation
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, store storage.Store)
	}{
		{"SetGet", testSetGet},
		{"GetNonExistent", testGetNonExistent},
		{"Overwrite", testOverwrite},
		{"Delete", testDelete},
		{"DeleteNonExistent", testDeleteNonExistent},
		{"ValueIsCopied", testValueIsCopied},
		{"HealthCheck", testHealthCheck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			tt.test(t, store)
		})
	}
}

func testSetGet(t *testing.T, store storage.Store) {
	ctx := context.Background()
	value := []byte(`{"token":"abc"}`)

	if err := store.Set(ctx, "test-setget", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "test-setget")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Expected %s, got %s", value, got)
	}
}

func testGetNonExistent(t *testing.T, store storage.Store) {
	_, err := store.Get(context.Background(), "test-missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func testOverwrite(t *testing.T, store storage.Store) {
	ctx := context.Background()
	if err := store.Set(ctx, "test-overwrite", []byte("first")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "test-overwrite", []byte("second")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "test-overwrite")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Expected second, got %s", got)
	}
}

func testDelete(t *testing.T, store storage.Store) {
	ctx := context.Background()
	if err := store.Set(ctx, "test-delete", []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, "test-delete"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "test-delete"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func testDeleteNonExistent(t *testing.T, store storage.Store) {
	if err := store.Delete(context.Background(), "test-never-set"); err != nil {
		t.Errorf("Deleting a missing key should succeed, got %v", err)
	}
}

func testValueIsCopied(t *testing.T, store storage.Store) {
	ctx := context.Background()
	value := []byte("original")
	if err := store.Set(ctx, "test-copy", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X'

	got, err := store.Get(ctx, "test-copy")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("Stored value changed with caller's slice: %s", got)
	}
}

func testHealthCheck(t *testing.T, store storage.Store) {
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
