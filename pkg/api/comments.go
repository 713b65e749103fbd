package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CommentQuery selects a page of a post's comments
type CommentQuery struct {
	Page      int
	Limit     int
	SortOrder string
}

// Values encodes the query parameters understood by the comment listing
func (q CommentQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	setIfNotEmpty(v, "sortOrder", q.SortOrder)
	return v
}

type newCommentRequest struct {
	Commenter   string `json:"commenter"`
	CommentText string `json:"commentText"`
}

type updateCommentRequest struct {
	CommentText string `json:"commentText"`
}

// ListComments fetches one page of comments for a post
func (c *Client) ListComments(ctx context.Context, postID string, q CommentQuery) (*CommentPage, error) {
	var page CommentPage
	if _, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/comments/blog/" + url.PathEscape(postID),
		query:    q.Values(),
		fallback: "Failed to fetch comments",
	}, &page); err != nil {
		return nil, err
	}
	if page.Comments == nil {
		page.Comments = []Comment{}
	}
	return &page, nil
}

// GetComment fetches a single comment
func (c *Client) GetComment(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	if _, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/comments/" + url.PathEscape(id),
		fallback: "Failed to fetch comment",
	}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateComment adds a comment to a post
func (c *Client) CreateComment(ctx context.Context, token, postID, commenter, text string) (*Comment, error) {
	var comment Comment
	if _, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/comments/blog/" + url.PathEscape(postID),
		token:  token,
		body: newCommentRequest{
			Commenter:   strings.TrimSpace(commenter),
			CommentText: strings.TrimSpace(text),
		},
		fallback: "Failed to add comment",
	}, &comment); err != nil {
		return nil, err
	}
	if comment.PostID == "" {
		comment.PostID = postID
	}
	return &comment, nil
}

// UpdateComment replaces a comment's text
func (c *Client) UpdateComment(ctx context.Context, token, id, text string) (*Comment, error) {
	var comment Comment
	if _, err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/comments/" + url.PathEscape(id),
		token:    token,
		body:     updateCommentRequest{CommentText: strings.TrimSpace(text)},
		fallback: "Failed to update comment",
	}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment and returns the server's message
func (c *Client) DeleteComment(ctx context.Context, token, id string) (string, error) {
	env, err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/comments/" + url.PathEscape(id),
		token:    token,
		fallback: "Failed to delete comment",
	}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
