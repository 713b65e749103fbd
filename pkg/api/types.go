package api

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/json-iterator/go"
)

// AuthorRef identifies a post's author. The backend has sent authors as a
// bare username, a bare user id, or a populated user object; all three are
// folded into this shape once, at decode time.
type AuthorRef struct {
	ID       string
	Username string
}

// ByID reports whether the author is known by user id
func (a AuthorRef) ByID() bool {
	return a.ID != ""
}

// IsZero reports whether no author information was present
func (a AuthorRef) IsZero() bool {
	return a.ID == "" && a.Username == ""
}

// String returns the display name, falling back to the id
func (a AuthorRef) String() string {
	if a.Username != "" {
		return a.Username
	}
	return a.ID
}

func (a AuthorRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(refWire{ID: a.ID, Username: a.Username})
}

func (a *AuthorRef) UnmarshalJSON(data []byte) error {
	id, name, err := decodeRef(data)
	if err != nil {
		return fmt.Errorf("author: %w", err)
	}
	a.ID, a.Username = id, name
	return nil
}

type refWire struct {
	ID       string `json:"id,omitempty"`
	MongoID  string `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

// decodeRef accepts a string or a populated object. A 24 character hex string
// is a record id; any other string is a name.
func decodeRef(data []byte) (id, name string, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return "", "", nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", "", err
		}
		if isObjectID(s) {
			return s, "", nil
		}
		return "", s, nil
	case '{':
		var w refWire
		if err := json.Unmarshal(data, &w); err != nil {
			return "", "", err
		}
		id = w.ID
		if id == "" {
			id = w.MongoID
		}
		name = w.Username
		if name == "" {
			name = w.Name
		}
		return id, name, nil
	default:
		return "", "", fmt.Errorf("unsupported reference %s", data)
	}
}

func isObjectID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// Post is a blog article
type Post struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Content      string    `json:"content" yaml:"content"`
	Author       AuthorRef `json:"author" yaml:"author"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"updatedAt"`
	CommentCount int       `json:"commentCount" yaml:"commentCount"`
	Comments     []Comment `json:"comments,omitempty" yaml:"comments,omitempty"`
	Category     string    `json:"category,omitempty" yaml:"category,omitempty"`
	IsPublished  bool      `json:"isPublished" yaml:"isPublished"`
}

type postWire struct {
	ID           string          `json:"id"`
	MongoID      string          `json:"_id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Author       json.RawMessage `json:"author"`
	UserID       json.RawMessage `json:"userId"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	CommentCount int             `json:"commentCount"`
	Comments     []Comment       `json:"comments"`
	Category     string          `json:"category"`
	IsPublished  bool            `json:"isPublished"`
}

func (p *Post) UnmarshalJSON(data []byte) error {
	var w postWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, name, err := decodeRef(w.Author)
	if err != nil {
		return fmt.Errorf("post author: %w", err)
	}
	// Older records name the author and carry the owner id separately.
	if id == "" {
		if id, _, err = decodeRef(w.UserID); err != nil {
			return fmt.Errorf("post userId: %w", err)
		}
	}

	*p = Post{
		ID:           firstNonEmpty(w.ID, w.MongoID),
		Title:        w.Title,
		Content:      w.Content,
		Author:       AuthorRef{ID: id, Username: name},
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
		CommentCount: w.CommentCount,
		Comments:     w.Comments,
		Category:     w.Category,
		IsPublished:  w.IsPublished,
	}
	if p.CommentCount < 0 {
		p.CommentCount = 0
	}
	return nil
}

// Comment is a reply attached to a post
type Comment struct {
	ID          string    `json:"id" yaml:"id"`
	PostID      string    `json:"postId" yaml:"postId"`
	Commenter   string    `json:"commenter" yaml:"commenter"`
	CommentText string    `json:"commentText" yaml:"commentText"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UserID      string    `json:"userId,omitempty" yaml:"userId,omitempty"`
}

type commentWire struct {
	ID          string          `json:"id"`
	MongoID     string          `json:"_id"`
	PostID      string          `json:"postId"`
	Blog        json.RawMessage `json:"blog"`
	Commenter   string          `json:"commenter"`
	CommentText string          `json:"commentText"`
	CreatedAt   time.Time       `json:"createdAt"`
	UserID      json.RawMessage `json:"userId"`
	User        json.RawMessage `json:"user"`
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var w commentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	postID := w.PostID
	if postID == "" {
		id, _, err := decodeRef(w.Blog)
		if err != nil {
			return fmt.Errorf("comment blog: %w", err)
		}
		postID = id
	}

	userID, _, err := decodeRef(w.UserID)
	if err != nil {
		return fmt.Errorf("comment userId: %w", err)
	}
	if userID == "" {
		if userID, _, err = decodeRef(w.User); err != nil {
			return fmt.Errorf("comment user: %w", err)
		}
	}

	*c = Comment{
		ID:          firstNonEmpty(w.ID, w.MongoID),
		PostID:      postID,
		Commenter:   w.Commenter,
		CommentText: w.CommentText,
		CreatedAt:   w.CreatedAt,
		UserID:      userID,
	}
	return nil
}

// User is an account as returned by the auth endpoints
type User struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
}

type userWire struct {
	ID       string `json:"id"`
	MongoID  string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = User{ID: firstNonEmpty(w.ID, w.MongoID), Username: w.Username, Email: w.Email}
	return nil
}

// Pagination mirrors the server's paging metadata
type Pagination struct {
	CurrentPage   int  `json:"currentPage" yaml:"currentPage"`
	TotalPages    int  `json:"totalPages" yaml:"totalPages"`
	TotalBlogs    int  `json:"totalBlogs,omitempty" yaml:"totalBlogs,omitempty"`
	TotalComments int  `json:"totalComments,omitempty" yaml:"totalComments,omitempty"`
	HasNextPage   bool `json:"hasNextPage" yaml:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage" yaml:"hasPrevPage"`
}

// PostPage is one page of the post listing
type PostPage struct {
	Posts      []Post     `json:"blogs"`
	Pagination Pagination `json:"pagination"`
}

// CommentPage is one page of a post's comments
type CommentPage struct {
	Comments   []Comment  `json:"comments"`
	Pagination Pagination `json:"pagination"`
}

// AuthResult is returned by login, register and password reset
type AuthResult struct {
	User    User   `json:"user"`
	Token   string `json:"token"`
	Message string `json:"-"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
