// Package app holds the application state shared by every command: one
// session holder, one post cache and one comment cache over a single API
// client.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/auth"
	"github.com/blogdeck/blogdeck/cli/pkg/client"
	"github.com/blogdeck/blogdeck/cli/pkg/config"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
	"github.com/blogdeck/blogdeck/cli/pkg/storage"
	_ "github.com/blogdeck/blogdeck/cli/pkg/storage/file"
	_ "github.com/blogdeck/blogdeck/cli/pkg/storage/memory"
	_ "github.com/blogdeck/blogdeck/cli/pkg/storage/redis"
	"github.com/blogdeck/blogdeck/cli/pkg/store"
)

// State is the explicit replacement for process-wide stores
type State struct {
	API      *api.Client
	Auth     *auth.Holder
	Posts    *store.PostStore
	Comments *store.CommentStore

	storage storage.Store
}

// New wires the state over st. Any 401 on a request that carried the
// session token ends the session and drops the cached comment threads, the
// same as logout.
func New(opts client.Options, st storage.Store) *State {
	s := &State{storage: st}

	opts.OnUnauthorized = func() {
		if s.Auth == nil || !s.Auth.IsAuthenticated() {
			return
		}
		s.Auth.HandleUnauthorized()
		s.Comments.ClearAll()
	}

	s.API = api.New(client.New(opts))
	s.Auth = auth.NewHolder(s.API, st)
	s.Posts = store.NewPostStore(s.API)
	s.Comments = store.NewCommentStore(s.API, s.Posts)
	return s
}

// StorageConfig reads the storage.* settings
func StorageConfig() storage.Config {
	return storage.Config{
		Backend:  storage.Backend(config.GetString("storage.backend")),
		Dir:      config.GetString("storage.dir"),
		RedisURL: config.GetString("storage.redis_url"),
	}
}

// NewFromConfig opens the configured storage, builds the state and restores
// any persisted session. config.Init must have run.
func NewFromConfig(ctx context.Context) (*State, error) {
	st, err := storage.NewStoreFromConfig(StorageConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	s := New(client.OptionsFromConfig(), st)

	restoreCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Auth.Restore(restoreCtx); err != nil {
		// A damaged record only means the user has to log in again.
		logger.Warn("Failed to restore session", "error", err)
	}
	return s, nil
}

// Storage returns the local storage backing the session
func (s *State) Storage() storage.Store {
	return s.storage
}

// Close releases the storage backend
func (s *State) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}
