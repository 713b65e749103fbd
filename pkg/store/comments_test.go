package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/api/apitest"
)

func (f *fixture) seedThread(t *testing.T, comments int) *apitest.Post {
	t.Helper()
	post := f.seedPosts(1)[0]
	for i := 0; i < comments; i++ {
		f.srv.AddComment(post.ID, f.alice, "Seeded comment")
	}
	_, err := f.posts.FetchPosts(context.Background(), api.ListQuery{})
	require.NoError(t, err)
	return post
}

func TestFetchCommentsSyncsCount(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 3)

	res, err := f.comments.FetchComments(context.Background(), post.ID, api.CommentQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.False(t, res.Stale)

	th := f.comments.Thread(post.ID)
	assert.Len(t, th.Comments, 2)
	assert.True(t, th.Pagination.HasNextPage)
	assert.False(t, th.Loading)
	assert.Equal(t, 3, f.comments.CommentCount(post.ID))

	n, _ := f.posts.CommentCount(post.ID)
	assert.Equal(t, 3, n)
}

func TestFetchCommentsUnknownPost(t *testing.T) {
	f := newFixture(t)

	_, err := f.comments.FetchComments(context.Background(), "ffffffffffffffffffffffff", api.CommentQuery{})
	require.Error(t, err)
	assert.Equal(t, "Blog not found", f.comments.Thread("ffffffffffffffffffffffff").Err)
}

func TestLoadMoreComments(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 3)
	ctx := context.Background()
	q := api.CommentQuery{Page: 1, Limit: 2}

	_, err := f.comments.FetchComments(ctx, post.ID, q)
	require.NoError(t, err)

	_, err = f.comments.LoadMoreComments(ctx, post.ID, 0, q)
	require.NoError(t, err)

	th := f.comments.Thread(post.ID)
	assert.Len(t, th.Comments, 3)
	assert.Equal(t, 2, th.Pagination.CurrentPage)
	assert.False(t, th.Pagination.HasNextPage)

	before := f.srv.Requests()
	_, err = f.comments.LoadMoreComments(ctx, post.ID, 0, q)
	assert.ErrorIs(t, err, ErrNoMoreComments)
	assert.Equal(t, before, f.srv.Requests())
}

func TestLoadMoreCommentsNeedsThread(t *testing.T) {
	f := newFixture(t)

	_, err := f.comments.LoadMoreComments(context.Background(), "nothing-cached", 0, api.CommentQuery{})
	assert.Error(t, err)
	assert.Equal(t, 0, f.srv.Requests())
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 1)
	ctx := context.Background()
	_, err := f.comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)

	comment, err := f.comments.AddComment(ctx, post.ID, "alice", "  Nice write-up  ", f.token)
	require.NoError(t, err)
	assert.Equal(t, "Nice write-up", comment.CommentText)
	assert.False(t, f.comments.Submitting())

	th := f.comments.Thread(post.ID)
	require.Len(t, th.Comments, 2)
	assert.Equal(t, comment.ID, th.Comments[1].ID)
	assert.Equal(t, 2, f.comments.CommentCount(post.ID))

	n, _ := f.posts.CommentCount(post.ID)
	assert.Equal(t, 2, n)
}

func TestAddCommentWithoutCachedThreadUsesPostCount(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 4)

	_, err := f.comments.AddComment(context.Background(), post.ID, "alice", "Late to the party", f.token)
	require.NoError(t, err)
	assert.Equal(t, 5, f.comments.CommentCount(post.ID))
}

func TestAddCommentRejectsInvalidText(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 0)
	ctx := context.Background()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"empty", "   ", "Comment cannot be empty"},
		{"too long", longText(501), "Comment cannot exceed 500 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.srv.Requests()
			_, err := f.comments.AddComment(ctx, post.ID, "alice", tc.text, f.token)
			require.Error(t, err)
			assert.Equal(t, tc.want, f.comments.LastError())
			assert.Equal(t, before, f.srv.Requests())
			assert.Empty(t, f.comments.Thread(post.ID).Comments)
		})
	}

	_, err := f.comments.AddComment(ctx, post.ID, "alice", longText(500), f.token)
	assert.NoError(t, err)
	assert.Empty(t, f.comments.LastError())
}

func TestUpdateComment(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 2)
	ctx := context.Background()
	_, err := f.comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)

	target := f.comments.Thread(post.ID).Comments[0]
	_, err = f.comments.UpdateComment(ctx, target.ID, "Edited text", f.token)
	require.NoError(t, err)

	th := f.comments.Thread(post.ID)
	assert.Equal(t, "Edited text", th.Comments[0].CommentText)
	assert.Equal(t, "Seeded comment", th.Comments[1].CommentText)
	assert.Equal(t, post.ID, th.Comments[0].PostID)
}

func TestUpdateCommentForbidden(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 1)
	f.srv.AddUser("mallory", "mallory@example.com", "secret1")
	other := f.srv.IssueToken("mallory")
	ctx := context.Background()
	_, err := f.comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)

	target := f.comments.Thread(post.ID).Comments[0]
	_, err = f.comments.UpdateComment(ctx, target.ID, "Not mine", other)
	require.Error(t, err)
	assert.Equal(t, "Not authorized to update this comment", f.comments.LastError())
	assert.Equal(t, "Seeded comment", f.comments.Thread(post.ID).Comments[0].CommentText)
}

func TestDeleteComment(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 2)
	ctx := context.Background()
	_, err := f.comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)

	target := f.comments.Thread(post.ID).Comments[0]
	_, err = f.comments.DeleteComment(ctx, target.ID, post.ID, f.token)
	require.NoError(t, err)

	th := f.comments.Thread(post.ID)
	require.Len(t, th.Comments, 1)
	assert.NotEqual(t, target.ID, th.Comments[0].ID)
	assert.Equal(t, 1, f.comments.CommentCount(post.ID))

	n, _ := f.posts.CommentCount(post.ID)
	assert.Equal(t, 1, n)
}

func TestDeleteCommentCounterFloor(t *testing.T) {
	f := newFixture(t)
	post := f.srv.AddPost(f.alice, "Uncached post title", validContent, time.Now())
	comment := f.srv.AddComment(post.ID, f.alice, "Only comment")

	_, err := f.comments.DeleteComment(context.Background(), comment.ID, post.ID, f.token)
	require.NoError(t, err)
	assert.Equal(t, 0, f.comments.CommentCount(post.ID))
}

func TestDeleteCommentFailureKeepsThread(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 1)
	ctx := context.Background()
	_, err := f.comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)

	_, err = f.comments.DeleteComment(ctx, "ffffffffffffffffffffffff", post.ID, f.token)
	require.Error(t, err)
	assert.Equal(t, "Comment not found", f.comments.LastError())
	assert.Len(t, f.comments.Thread(post.ID).Comments, 1)
	assert.Equal(t, 1, f.comments.CommentCount(post.ID))
}

func TestClearThreads(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 1)
	ctx := context.Background()
	_, err := f.comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)

	f.comments.ClearThread(post.ID)
	assert.Empty(t, f.comments.Thread(post.ID).Comments)
	assert.Equal(t, 0, f.comments.CommentCount(post.ID))

	_, err = f.comments.FetchComments(ctx, post.ID, api.CommentQuery{})
	require.NoError(t, err)
	f.comments.ClearAll()
	assert.Empty(t, f.comments.Thread(post.ID).Comments)
}

func TestThreadReturnsCopy(t *testing.T) {
	f := newFixture(t)
	post := f.seedThread(t, 1)
	_, err := f.comments.FetchComments(context.Background(), post.ID, api.CommentQuery{})
	require.NoError(t, err)

	th := f.comments.Thread(post.ID)
	th.Comments[0].CommentText = "mutated"
	assert.Equal(t, "Seeded comment", f.comments.Thread(post.ID).Comments[0].CommentText)
}

func writeCommentPage(w http.ResponseWriter, id, text string) {
	apitest.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"comments": []map[string]interface{}{
				{"_id": id, "blog": "p1", "commenter": "alice", "commentText": text},
			},
			"pagination": map[string]interface{}{"currentPage": 1, "totalPages": 1, "totalComments": 1},
		},
	})
}

func TestSupersededCommentFetchAfterClear(t *testing.T) {
	clearers := map[string]func(s *CommentStore){
		"clear thread": func(s *CommentStore) { s.ClearThread("p1") },
		"clear all":    func(s *CommentStore) { s.ClearAll() },
	}

	for name, clear := range clearers {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			release := make(chan struct{})

			f.srv.Handle(http.MethodGet, "/api/comments/blog/p1", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("limit") == "1" {
					<-release
					writeCommentPage(w, "c1", "older page")
					return
				}
				writeCommentPage(w, "c2", "newer page")
			})

			done := make(chan *CommentsResult, 1)
			go func() {
				res, err := f.comments.FetchComments(ctx, "p1", api.CommentQuery{Page: 1, Limit: 1})
				assert.NoError(t, err)
				done <- res
			}()
			require.Eventually(t, func() bool { return f.srv.Requests() == 1 }, 2*time.Second, 5*time.Millisecond)

			clear(f.comments)
			fresh, err := f.comments.FetchComments(ctx, "p1", api.CommentQuery{Page: 1, Limit: 2})
			close(release)
			require.NoError(t, err)
			assert.False(t, fresh.Stale)

			stale := <-done
			require.NotNil(t, stale)
			assert.True(t, stale.Stale)

			th := f.comments.Thread("p1")
			require.Len(t, th.Comments, 1)
			assert.Equal(t, "c2", th.Comments[0].ID)
			assert.False(t, th.Loading)
		})
	}
}
