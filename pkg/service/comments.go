package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/app"
	"github.com/blogdeck/blogdeck/cli/pkg/config"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/formatter"
	"github.com/blogdeck/blogdeck/cli/pkg/output"
	"github.com/blogdeck/blogdeck/cli/pkg/store"
)

type CommentService struct {
	state *app.State
}

// NewCommentService creates a new comment service
func NewCommentService(state *app.State) *CommentService {
	return &CommentService{state: state}
}

// ListComments shows a post's comments. With all set every page is loaded.
func (s *CommentService) ListComments(ctx context.Context, postID string, page, limit int, all bool) error {
	ctx = background(ctx)
	q := api.CommentQuery{Page: page, Limit: limit}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = config.GetInt("comments.page_size")
	}

	if _, err := s.state.Comments.FetchComments(ctx, postID, q); err != nil {
		return err
	}
	for all {
		_, err := s.state.Comments.LoadMoreComments(ctx, postID, 0, q)
		if errors.Is(err, store.ErrNoMoreComments) {
			break
		}
		if err != nil {
			return err
		}
	}

	thread := s.state.Comments.Thread(postID)
	title := fmt.Sprintf("Comments (%d)", thread.Pagination.TotalComments)
	if err := output.PrintList(title, thread.Comments, formatter.CommentHeaders, formatter.CommentRows(thread.Comments)); err != nil {
		return err
	}
	if !output.IsStructured() && thread.Pagination.HasNextPage {
		output.PrintInfo("More comments: blogdeck comment list %s --page %d", postID, thread.Pagination.CurrentPage+1)
	}
	return nil
}

// AddComment comments on a post as the signed-in user
func (s *CommentService) AddComment(ctx context.Context, postID, text string) error {
	ctx = background(ctx)
	user, token, err := session(s.state)
	if err != nil {
		return err
	}

	text, err = promptIfEmpty(text, "Comment: ")
	if err != nil {
		return err
	}

	comment, err := s.state.Comments.AddComment(ctx, postID, user.Username, text, token)
	if err != nil {
		return sessionErr(s.state, err)
	}

	if output.IsStructured() {
		return output.Print("", comment)
	}
	output.PrintSuccess("✓ Comment added: %s", comment.ID)
	return nil
}

// owned fetches a comment and checks the signed-in user may change it
func (s *CommentService) owned(ctx context.Context, user *api.User, commentID, action string) (*api.Comment, error) {
	comment, err := s.state.API.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !store.CanModifyComment(user, *comment) {
		return nil, clierrors.ForbiddenError(fmt.Sprintf("You can only %s your own comments", action))
	}
	return comment, nil
}

// EditComment replaces the text of a comment the signed-in user wrote
func (s *CommentService) EditComment(ctx context.Context, commentID, text string) error {
	ctx = background(ctx)
	user, token, err := session(s.state)
	if err != nil {
		return err
	}

	if _, err := s.owned(ctx, user, commentID, "edit"); err != nil {
		return err
	}

	text, err = promptIfEmpty(text, "New text: ")
	if err != nil {
		return err
	}

	comment, err := s.state.Comments.UpdateComment(ctx, commentID, text, token)
	if err != nil {
		return sessionErr(s.state, err)
	}

	if output.IsStructured() {
		return output.Print("", comment)
	}
	output.PrintSuccess("✓ Comment updated")
	return nil
}

// DeleteComment removes a comment the signed-in user wrote
func (s *CommentService) DeleteComment(ctx context.Context, commentID string, force bool) error {
	ctx = background(ctx)
	user, token, err := session(s.state)
	if err != nil {
		return err
	}

	comment, err := s.owned(ctx, user, commentID, "delete")
	if err != nil {
		return err
	}

	ok, err := confirm(force, fmt.Sprintf("Delete comment %q?", formatter.Excerpt(comment.CommentText, 40)))
	if err != nil || !ok {
		return err
	}

	msg, err := s.state.Comments.DeleteComment(ctx, commentID, comment.PostID, token)
	if err != nil {
		return sessionErr(s.state, err)
	}
	if msg == "" {
		msg = "Comment deleted"
	}
	output.PrintSuccess("✓ %s", msg)
	return nil
}
