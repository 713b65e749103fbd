package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/blogdeck/blogdeck/cli/pkg/logger"
)

// DefaultCategory is assigned to posts created without one
const DefaultCategory = "General"

// ListQuery selects a page of the post listing. Zero values are omitted.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
	Category  string
	Author    string
}

// Values encodes the query parameters understood by GET /blogs
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	setIfNotEmpty(v, "sortBy", q.SortBy)
	setIfNotEmpty(v, "sortOrder", q.SortOrder)
	setIfNotEmpty(v, "search", q.Search)
	setIfNotEmpty(v, "category", q.Category)
	setIfNotEmpty(v, "author", q.Author)
	return v
}

func setIfNotEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// NewPost is the body of a create request
type NewPost struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	IsPublished bool   `json:"isPublished"`
}

// PostPatch holds the fields to change. Nil fields are left as they are.
type PostPatch struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil && p.IsPublished == nil
}

// ListPosts fetches one page of posts
func (c *Client) ListPosts(ctx context.Context, q ListQuery) (*PostPage, error) {
	logger.Debug("Listing posts", "page", q.Page, "limit", q.Limit, "search", q.Search)

	var page PostPage
	if _, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/blogs",
		query:    q.Values(),
		fallback: "Failed to fetch blogs",
	}, &page); err != nil {
		return nil, err
	}
	if page.Posts == nil {
		page.Posts = []Post{}
	}
	return &page, nil
}

// GetPost fetches a single post
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	if _, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/blogs/" + url.PathEscape(id),
		fallback: "Failed to fetch blog post",
	}, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost publishes a new post. The server assigns its id and timestamps.
func (c *Client) CreatePost(ctx context.Context, token string, p NewPost) (*Post, error) {
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	logger.Debug("Creating post", "title", p.Title, "author", p.Author)

	var post Post
	if _, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/blogs",
		token:    token,
		body:     p,
		fallback: "Failed to create blog post",
	}, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost applies patch and returns the server's full copy of the post
func (c *Client) UpdatePost(ctx context.Context, token, id string, patch PostPatch) (*Post, error) {
	var post Post
	if _, err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/blogs/" + url.PathEscape(id),
		token:    token,
		body:     patch,
		fallback: "Failed to update blog post",
	}, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post and returns the server's message
func (c *Client) DeletePost(ctx context.Context, token, id string) (string, error) {
	env, err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/blogs/" + url.PathEscape(id),
		token:    token,
		fallback: "Failed to delete blog post",
	}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
