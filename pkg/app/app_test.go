package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/api/apitest"
	"github.com/blogdeck/blogdeck/cli/pkg/client"
	"github.com/blogdeck/blogdeck/cli/pkg/config"
	"github.com/blogdeck/blogdeck/cli/pkg/storage/memory"
)

func TestUnauthorizedEndsSession(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("alice", "alice@example.com", "secret1")
	other := &apitest.User{ID: "000000000000000000000abc", Username: "bob"}
	post := srv.AddPost(other, "Someone else's post", "Content long enough to pass validation.", time.Now())
	srv.AddComment(post.ID, other, "cached before the session ends")
	ctx := context.Background()

	s := New(client.Options{BaseURL: srv.BaseURL(), Timeout: 5 * time.Second}, memory.New())
	require.NoError(t, s.Auth.Login(ctx, "alice", "secret1"))
	_, err := s.Comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)
	require.Len(t, s.Comments.Thread(post.ID).Comments, 1)

	srv.RevokeToken(s.Auth.Token())

	_, err = s.Posts.DeletePost(ctx, post.ID, s.Auth.Token())
	require.Error(t, err)
	assert.False(t, s.Auth.IsAuthenticated())
	assert.Empty(t, s.Comments.Thread(post.ID).Comments)
	assert.Equal(t, 0, s.Comments.CommentCount(post.ID))
}

func TestCommentCountsReachPostCache(t *testing.T) {
	srv := apitest.NewServer(t)
	alice := srv.AddUser("alice", "alice@example.com", "secret1")
	post := srv.AddPost(alice, "A post with comments", "Content long enough to pass validation.", time.Now())
	srv.AddComment(post.ID, alice, "first")
	ctx := context.Background()

	s := New(client.Options{BaseURL: srv.BaseURL(), Timeout: 5 * time.Second}, memory.New())
	require.NoError(t, s.Auth.Login(ctx, "alice", "secret1"))
	_, err := s.Posts.FetchPosts(ctx, api.ListQuery{})
	require.NoError(t, err)

	_, err = s.Comments.AddComment(ctx, post.ID, "alice", "second", s.Auth.Token())
	require.NoError(t, err)

	cached, ok := s.Posts.Lookup(post.ID)
	require.True(t, ok)
	assert.Equal(t, 2, cached.CommentCount)
}

func TestNewFromConfigRestoresSession(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("alice", "alice@example.com", "secret1")
	dir := t.TempDir()
	require.NoError(t, config.Init(filepath.Join(dir, "config.toml")))
	config.Override("api.base_url", srv.BaseURL())
	config.Override("storage.dir", filepath.Join(dir, "state"))
	ctx := context.Background()

	first, err := NewFromConfig(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Auth.Login(ctx, "alice", "secret1"))
	require.NoError(t, first.Close())

	second, err := NewFromConfig(ctx)
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.Auth.IsAuthenticated())
	assert.Equal(t, "alice", second.Auth.User().Username)
}

func TestNewFromConfigRejectsUnknownBackend(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Override("storage.backend", "floppy")

	_, err := NewFromConfig(context.Background())
	assert.Error(t, err)
}
