package api

import (
	"context"
	"testing"
	"time"

	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
)

func TestCommentLifecycle(t *testing.T) {
	c, srv := newTestClient(t)
	alice := srv.AddUser("alice", "alice@example.com", "secret1")
	post := srv.AddPost(alice, "A post", "Content for the post", time.Now())
	token := srv.IssueToken("alice")
	ctx := context.Background()

	comment, err := c.CreateComment(ctx, token, post.ID, " alice ", "  Great post!  ")
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if comment.CommentText != "Great post!" || comment.Commenter != "alice" {
		t.Errorf("Expected trimmed fields, got %+v", comment)
	}
	if comment.PostID != post.ID || comment.UserID != alice.ID {
		t.Errorf("Unexpected references %+v", comment)
	}

	page, err := c.ListComments(ctx, post.ID, CommentQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(page.Comments) != 1 || page.Pagination.TotalComments != 1 {
		t.Errorf("Unexpected page %+v", page)
	}

	updated, err := c.UpdateComment(ctx, token, comment.ID, "Edited text")
	if err != nil {
		t.Fatalf("UpdateComment failed: %v", err)
	}
	if updated.CommentText != "Edited text" {
		t.Errorf("Unexpected text %q", updated.CommentText)
	}

	fetched, err := c.GetComment(ctx, comment.ID)
	if err != nil {
		t.Fatalf("GetComment failed: %v", err)
	}
	if fetched.CommentText != "Edited text" {
		t.Errorf("Unexpected text %q", fetched.CommentText)
	}

	if _, err := c.DeleteComment(ctx, token, comment.ID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	if _, err := c.GetComment(ctx, comment.ID); !clierrors.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}

func TestCreateComment_ServerValidation(t *testing.T) {
	c, srv := newTestClient(t)
	alice := srv.AddUser("alice", "alice@example.com", "secret1")
	post := srv.AddPost(alice, "A post", "Content for the post", time.Now())

	_, err := c.CreateComment(context.Background(), srv.IssueToken("alice"), post.ID, "alice", "   ")
	if clierrors.Message(err) != "Comment text is required" {
		t.Errorf("Expected server message, got %q", clierrors.Message(err))
	}
}

func TestListComments_UnknownPost(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.ListComments(context.Background(), "missing", CommentQuery{})
	if !clierrors.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestCommentQueryValues(t *testing.T) {
	v := CommentQuery{Page: 3, SortOrder: "asc"}.Values()
	if v.Get("page") != "3" || v.Get("sortOrder") != "asc" {
		t.Errorf("Unexpected values %v", v)
	}
	if _, ok := v["limit"]; ok {
		t.Error("Zero limit should be omitted")
	}
}
