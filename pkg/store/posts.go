package store

import (
	"context"
	"sync"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
	"github.com/blogdeck/blogdeck/cli/pkg/validation"
)

// PostsResult is what a listing fetch returned. Stale is set when a newer
// fetch was issued before this one finished; stale results are not applied.
type PostsResult struct {
	api.PostPage
	Stale bool
}

// PostStore mirrors the server's post listing. Writes are applied only after
// the server confirms them; failures leave the cache as it was.
type PostStore struct {
	client *api.Client

	mu         sync.RWMutex
	posts      []api.Post
	pagination api.Pagination
	loading    bool
	lastError  string
	issued     uint64
}

// NewPostStore creates an empty post cache
func NewPostStore(client *api.Client) *PostStore {
	return &PostStore{client: client, posts: []api.Post{}}
}

// next issues a sequence number for a listing fetch
func (s *PostStore) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.loading = true
	s.lastError = ""
	return s.issued
}

// FetchPosts replaces the cached listing with one page from the server
func (s *PostStore) FetchPosts(ctx context.Context, q api.ListQuery) (*PostsResult, error) {
	seq := s.next()

	page, err := s.client.ListPosts(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		logger.Debug("Discarding superseded post listing", "seq", seq, "latest", s.issued)
		if err != nil {
			return nil, err
		}
		return &PostsResult{PostPage: *page, Stale: true}, nil
	}

	s.loading = false
	if err != nil {
		s.lastError = clierrors.Message(err)
		return nil, err
	}

	s.posts = uniqueByID(page.Posts)
	s.pagination = page.Pagination
	return &PostsResult{PostPage: *page}, nil
}

// FetchAllPosts walks the listing page by page, up to maxPages, and caches
// the combined result. It is sequenced like FetchPosts.
func (s *PostStore) FetchAllPosts(ctx context.Context, q api.ListQuery, maxPages int) (*PostsResult, error) {
	seq := s.next()

	if q.Page < 1 {
		q.Page = 1
	}
	var all []api.Post
	var last api.Pagination
	var err error
	for fetched := 0; maxPages <= 0 || fetched < maxPages; fetched++ {
		var page *api.PostPage
		page, err = s.client.ListPosts(ctx, q)
		if err != nil {
			break
		}
		all = append(all, page.Posts...)
		last = page.Pagination
		if !page.Pagination.HasNextPage {
			break
		}
		q.Page++
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		if err != nil {
			return nil, err
		}
		return &PostsResult{PostPage: api.PostPage{Posts: all, Pagination: last}, Stale: true}, nil
	}

	s.loading = false
	if err != nil {
		s.lastError = clierrors.Message(err)
		return nil, err
	}

	s.posts = uniqueByID(all)
	s.pagination = last
	return &PostsResult{PostPage: api.PostPage{Posts: copyPosts(s.posts), Pagination: last}}, nil
}

// GetPost fetches one post from the server without touching the listing
func (s *PostStore) GetPost(ctx context.Context, id string) (*api.Post, error) {
	return s.client.GetPost(ctx, id)
}

// AddPost creates a post and puts the server's copy at the front of the cache
func (s *PostStore) AddPost(ctx context.Context, title, content, author, token string) (*api.Post, error) {
	if err := validation.Post(title, content); err != nil {
		return nil, s.fail(err)
	}
	if token == "" {
		return nil, s.fail(clierrors.NotLoggedInError())
	}

	post, err := s.client.CreatePost(ctx, token, api.NewPost{
		Title:       trim(title),
		Content:     trim(content),
		Author:      author,
		Category:    api.DefaultCategory,
		IsPublished: true,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
	s.posts = append([]api.Post{*post}, removeByID(s.posts, post.ID)...)
	logger.Info("Post created", "id", post.ID)
	return post, nil
}

// UpdatePost applies patch and replaces the cached entry with the server's
// full copy. Posts not in the cache are not added.
func (s *PostStore) UpdatePost(ctx context.Context, id string, patch api.PostPatch, token string) (*api.Post, error) {
	if patch.IsEmpty() {
		return nil, s.fail(clierrors.ValidationError("patch", "Nothing to update"))
	}
	if err := validation.PostEdit(patch.Title, patch.Content); err != nil {
		return nil, s.fail(err)
	}
	if token == "" {
		return nil, s.fail(clierrors.NotLoggedInError())
	}

	post, err := s.client.UpdatePost(ctx, token, id, patch)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i] = *post
			break
		}
	}
	return post, nil
}

// DeletePost removes a post. Deleting a post the server no longer has counts
// as success, so repeating a delete is harmless.
func (s *PostStore) DeletePost(ctx context.Context, id, token string) (string, error) {
	if token == "" {
		return "", s.fail(clierrors.NotLoggedInError())
	}

	msg, err := s.client.DeletePost(ctx, token, id)
	if err != nil {
		if !clierrors.IsNotFound(err) {
			return "", s.fail(err)
		}
		logger.Debug("Post already gone", "id", id)
		msg = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
	s.posts = removeByID(s.posts, id)
	return msg, nil
}

// SyncCommentCount sets the cached post's comment count
func (s *PostStore) SyncCommentCount(postID string, count int) {
	if count < 0 {
		count = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].CommentCount = count
			return
		}
	}
}

// CommentCount returns the cached post's comment count
func (s *PostStore) CommentCount(postID string) (int, bool) {
	post, ok := s.Lookup(postID)
	if !ok {
		return 0, false
	}
	return post.CommentCount, true
}

// Posts returns a copy of the cached listing
func (s *PostStore) Posts() []api.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPosts(s.posts)
}

// Lookup returns the cached post with id
func (s *PostStore) Lookup(id string) (api.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return clonePost(p), true
		}
	}
	return api.Post{}, false
}

func (s *PostStore) Pagination() api.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

func (s *PostStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *PostStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *PostStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

func (s *PostStore) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = clierrors.Message(err)
	return err
}

// copyPosts copies posts along with their embedded comments
func copyPosts(posts []api.Post) []api.Post {
	out := make([]api.Post, len(posts))
	for i, p := range posts {
		out[i] = clonePost(p)
	}
	return out
}

func clonePost(p api.Post) api.Post {
	if p.Comments != nil {
		comments := make([]api.Comment, len(p.Comments))
		copy(comments, p.Comments)
		p.Comments = comments
	}
	return p
}

// uniqueByID keeps the first occurrence of each id
func uniqueByID(posts []api.Post) []api.Post {
	seen := make(map[string]bool, len(posts))
	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func removeByID(posts []api.Post, id string) []api.Post {
	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
