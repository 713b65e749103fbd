package store

import (
	"context"
	"strings"
	"sync"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
	"github.com/blogdeck/blogdeck/cli/pkg/validation"
)

// ErrNoMoreComments is returned by LoadMoreComments on the last page.
var ErrNoMoreComments = clierrors.NewCLIError(clierrors.ErrorTypeValidation, "No more comments to load", nil)

// ErrCommentsLoading is returned when a thread already has a fetch running.
var ErrCommentsLoading = clierrors.NewCLIError(clierrors.ErrorTypeValidation, "Comments are already loading", nil)

// CountSink receives the authoritative comment count of a post. PostStore
// satisfies it.
type CountSink interface {
	CommentCount(postID string) (int, bool)
	SyncCommentCount(postID string, count int)
}

// Thread is the cached comment listing of one post
type Thread struct {
	Comments   []api.Comment
	Pagination api.Pagination
	Loading    bool
	Err        string
}

type thread struct {
	Thread
	// issued is the sequence number of the latest fetch started for this thread
	issued uint64
}

// CommentsResult is what a comment fetch returned
type CommentsResult struct {
	api.CommentPage
	Stale bool
}

// CommentStore caches comment threads keyed by post id. Each thread's
// TotalComments is the comment counter for its post and is mirrored into the
// CountSink after every confirmed change.
type CommentStore struct {
	client *api.Client
	posts  CountSink

	mu         sync.RWMutex
	threads    map[string]*thread
	issued     uint64 // never reset, so a recreated thread cannot reuse a number
	submitting bool
	lastError  string
}

// NewCommentStore creates an empty comment cache. posts may be nil.
func NewCommentStore(client *api.Client, posts CountSink) *CommentStore {
	return &CommentStore{
		client:  client,
		posts:   posts,
		threads: make(map[string]*thread),
	}
}

// threadLocked returns the thread for postID, creating it seeded with the
// post's known count. Caller holds mu.
func (s *CommentStore) threadLocked(postID string) *thread {
	th, ok := s.threads[postID]
	if !ok {
		th = &thread{Thread: Thread{Comments: []api.Comment{}}}
		if s.posts != nil {
			if n, ok := s.posts.CommentCount(postID); ok {
				th.Pagination.TotalComments = n
			}
		}
		s.threads[postID] = th
	}
	return th
}

// FetchComments replaces a post's thread with one page from the server
func (s *CommentStore) FetchComments(ctx context.Context, postID string, q api.CommentQuery) (*CommentsResult, error) {
	s.mu.Lock()
	th := s.threadLocked(postID)
	s.issued++
	th.issued = s.issued
	seq := th.issued
	th.Loading = true
	th.Err = ""
	s.mu.Unlock()

	page, err := s.client.ListComments(ctx, postID, q)

	s.mu.Lock()
	th, ok := s.threads[postID]
	if !ok || seq != th.issued {
		s.mu.Unlock()
		logger.Debug("Discarding superseded comment fetch", "post", postID, "seq", seq)
		if err != nil {
			return nil, err
		}
		return &CommentsResult{CommentPage: *page, Stale: true}, nil
	}

	th.Loading = false
	if err != nil {
		th.Err = clierrors.Message(err)
		s.mu.Unlock()
		return nil, err
	}

	th.Comments = uniqueComments(page.Comments)
	th.Pagination = page.Pagination
	if th.Pagination.TotalComments < len(th.Comments) {
		th.Pagination.TotalComments = len(th.Comments)
	}
	total := th.Pagination.TotalComments
	s.mu.Unlock()

	s.sync(postID, total)
	return &CommentsResult{CommentPage: *page}, nil
}

// LoadMoreComments appends the next page of a thread already in the cache.
// A page of 0 means the page after the current one.
func (s *CommentStore) LoadMoreComments(ctx context.Context, postID string, page int, q api.CommentQuery) (*CommentsResult, error) {
	s.mu.Lock()
	th, ok := s.threads[postID]
	switch {
	case !ok:
		s.mu.Unlock()
		return nil, clierrors.NewCLIError(clierrors.ErrorTypeValidation, "No comments loaded for this post", nil)
	case th.Loading:
		s.mu.Unlock()
		return nil, ErrCommentsLoading
	case !th.Pagination.HasNextPage:
		s.mu.Unlock()
		return nil, ErrNoMoreComments
	}
	if page <= 0 {
		page = th.Pagination.CurrentPage + 1
	}
	s.issued++
	th.issued = s.issued
	seq := th.issued
	th.Loading = true
	th.Err = ""
	s.mu.Unlock()

	q.Page = page
	result, err := s.client.ListComments(ctx, postID, q)

	s.mu.Lock()
	th, ok = s.threads[postID]
	if !ok || seq != th.issued {
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return &CommentsResult{CommentPage: *result, Stale: true}, nil
	}

	th.Loading = false
	if err != nil {
		th.Err = clierrors.Message(err)
		s.mu.Unlock()
		return nil, err
	}

	th.Comments = uniqueComments(append(th.Comments, result.Comments...))
	th.Pagination = result.Pagination
	if th.Pagination.TotalComments < len(th.Comments) {
		th.Pagination.TotalComments = len(th.Comments)
	}
	total := th.Pagination.TotalComments
	s.mu.Unlock()

	s.sync(postID, total)
	return &CommentsResult{CommentPage: *result}, nil
}

// AddComment posts a comment and appends the server's copy to the thread.
// Invalid text is rejected before any request is made.
func (s *CommentStore) AddComment(ctx context.Context, postID, commenter, text, token string) (*api.Comment, error) {
	text = strings.TrimSpace(text)
	if err := validation.Comment(text); err != nil {
		return nil, s.fail(err)
	}
	if token == "" {
		return nil, s.fail(clierrors.NotLoggedInError())
	}

	s.setSubmitting(true)
	defer s.setSubmitting(false)

	comment, err := s.client.CreateComment(ctx, token, postID, commenter, text)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	s.lastError = ""
	th := s.threadLocked(postID)
	th.Comments = append(removeComment(th.Comments, comment.ID), *comment)
	th.Pagination.TotalComments++
	total := th.Pagination.TotalComments
	s.mu.Unlock()

	s.sync(postID, total)
	logger.Info("Comment added", "post", postID, "id", comment.ID)
	return comment, nil
}

// UpdateComment edits a comment's text and replaces it in every cached thread
func (s *CommentStore) UpdateComment(ctx context.Context, commentID, text, token string) (*api.Comment, error) {
	text = strings.TrimSpace(text)
	if err := validation.Comment(text); err != nil {
		return nil, s.fail(err)
	}
	if token == "" {
		return nil, s.fail(clierrors.NotLoggedInError())
	}

	s.setSubmitting(true)
	defer s.setSubmitting(false)

	comment, err := s.client.UpdateComment(ctx, token, commentID, text)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
	for _, th := range s.threads {
		for i := range th.Comments {
			if th.Comments[i].ID == commentID {
				updated := *comment
				if updated.PostID == "" {
					updated.PostID = th.Comments[i].PostID
				}
				th.Comments[i] = updated
			}
		}
	}
	return comment, nil
}

// DeleteComment removes commentID from postID's thread once the server
// confirms. The counter never drops below zero.
func (s *CommentStore) DeleteComment(ctx context.Context, commentID, postID, token string) (string, error) {
	if token == "" {
		return "", s.fail(clierrors.NotLoggedInError())
	}

	s.setSubmitting(true)
	defer s.setSubmitting(false)

	msg, err := s.client.DeleteComment(ctx, token, commentID)
	if err != nil {
		return "", s.fail(err)
	}

	s.mu.Lock()
	s.lastError = ""
	th := s.threadLocked(postID)
	th.Comments = removeComment(th.Comments, commentID)
	th.Pagination.TotalComments--
	if th.Pagination.TotalComments < 0 {
		th.Pagination.TotalComments = 0
	}
	total := th.Pagination.TotalComments
	s.mu.Unlock()

	s.sync(postID, total)
	return msg, nil
}

// Thread returns a copy of the cached thread. A post with no cached thread
// yields an empty one.
func (s *CommentStore) Thread(postID string) Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	th, ok := s.threads[postID]
	if !ok {
		return Thread{Comments: []api.Comment{}}
	}
	out := th.Thread
	out.Comments = make([]api.Comment, len(th.Comments))
	copy(out.Comments, th.Comments)
	return out
}

// CommentCount returns the comment counter for postID
func (s *CommentStore) CommentCount(postID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if th, ok := s.threads[postID]; ok {
		return th.Pagination.TotalComments
	}
	return 0
}

// ClearThread drops one post's cached thread
func (s *CommentStore) ClearThread(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, postID)
}

// ClearAll drops every cached thread
func (s *CommentStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = make(map[string]*thread)
	s.lastError = ""
}

func (s *CommentStore) Submitting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitting
}

func (s *CommentStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *CommentStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

func (s *CommentStore) setSubmitting(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = v
}

func (s *CommentStore) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = clierrors.Message(err)
	return err
}

func (s *CommentStore) sync(postID string, total int) {
	if s.posts != nil {
		s.posts.SyncCommentCount(postID, total)
	}
}

func uniqueComments(comments []api.Comment) []api.Comment {
	seen := make(map[string]bool, len(comments))
	out := make([]api.Comment, 0, len(comments))
	for _, c := range comments {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

func removeComment(comments []api.Comment, id string) []api.Comment {
	out := make([]api.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
