package credentials

import (
	"context"
	"errors"

	json "github.com/json-iterator/go"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/storage"
)

// StorageKey is the fixed key the session record lives under
const StorageKey = "auth-storage"

// recordVersion is bumped when the persisted shape changes
const recordVersion = 0

// Credentials is the persisted session: the signed-in user and bearer token
type Credentials struct {
	User  *api.User `json:"user"`
	Token string    `json:"token"`
}

type record struct {
	State   Credentials `json:"state"`
	Version int         `json:"version"`
}

// Load reads the persisted session. A missing record is not an error.
func Load(ctx context.Context, store storage.Store) (*Credentials, error) {
	data, err := store.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &rec.State, nil
}

// Save persists the session
func Save(ctx context.Context, store storage.Store, creds *Credentials) error {
	data, err := json.MarshalIndent(record{State: *creds, Version: recordVersion}, "", "  ")
	if err != nil {
		return err
	}
	return store.Set(ctx, StorageKey, data)
}

// Delete removes the persisted session
func Delete(ctx context.Context, store storage.Store) error {
	return store.Delete(ctx, StorageKey)
}

// IsValid reports whether both a user and a token are present
func (c *Credentials) IsValid() bool {
	return c != nil && c.User != nil && c.Token != ""
}
