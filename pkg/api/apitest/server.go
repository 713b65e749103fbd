// Package apitest runs an in-process blog backend for tests
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// User is an account known to the fake backend
type User struct {
	ID       string
	Username string
	Email    string
	Password string
}

// Post is a stored post. The author is the owning user's id.
type Post struct {
	ID           string
	Title        string
	Content      string
	AuthorID     string
	Category     string
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CommentCount int
}

// Comment is a stored comment
type Comment struct {
	ID          string
	PostID      string
	UserID      string
	Commenter   string
	CommentText string
	CreatedAt   time.Time
}

// Server is a fake blog backend mounted under /api
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[string]*User // by username
	tokens      map[string]string
	resetTokens map[string]string
	posts       []*Post
	comments    []*Comment
	overrides   map[string]http.HandlerFunc
	nextID      int
	now         func() time.Time

	requests int64
}

// NewServer starts a fake backend; it is closed when the test ends
func NewServer(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		users:       make(map[string]*User),
		tokens:      make(map[string]string),
		resetTokens: make(map[string]string),
		overrides:   make(map[string]http.HandlerFunc),
		now:         time.Now,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Server.Close)
	return s
}

// BaseURL is the value for api.base_url
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Requests returns how many requests reached the server
func (s *Server) Requests() int {
	return int(atomic.LoadInt64(&s.requests))
}

// Handle replaces the response for one method and exact path, e.g.
// Handle("GET", "/api/blogs", h).
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = h
}

// SetClock fixes the time used for new records
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddUser registers an account directly
func (s *Server) AddUser(username, email, password string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password)
}

func (s *Server) addUserLocked(username, email, password string) *User {
	u := &User{ID: s.newIDLocked(), Username: username, Email: email, Password: password}
	s.users[username] = u
	return u
}

// IssueToken signs in username and returns a bearer token
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(s.users[username])
}

func (s *Server) issueTokenLocked(u *User) string {
	token := "tok-" + uuid.NewString()
	s.tokens[token] = u.ID
	return token
}

// RevokeToken makes token fail with 401 from now on
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// IssueResetToken creates a password reset token for username
func (s *Server) IssueResetToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "reset-" + uuid.NewString()
	s.resetTokens[token] = username
	return token
}

// Password returns the stored password for username
func (s *Server) Password(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		return u.Password
	}
	return ""
}

// AddPost stores a post written by author
func (s *Server) AddPost(author *User, title, content string, createdAt time.Time) *Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Post{
		ID:          s.newIDLocked(),
		Title:       title,
		Content:     content,
		AuthorID:    author.ID,
		Category:    "General",
		IsPublished: true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	s.posts = append(s.posts, p)
	return p
}

// AddComment stores a comment on a post
func (s *Server) AddComment(postID string, author *User, text string) *Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addCommentLocked(postID, author, text)
}

func (s *Server) addCommentLocked(postID string, author *User, text string) *Comment {
	c := &Comment{
		ID:          s.newIDLocked(),
		PostID:      postID,
		UserID:      author.ID,
		Commenter:   author.Username,
		CommentText: text,
		CreatedAt:   s.now(),
	}
	s.comments = append(s.comments, c)
	if p := s.findPostLocked(postID); p != nil {
		p.CommentCount++
	}
	return c
}

// PostCount returns the number of stored posts
func (s *Server) PostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// newIDLocked returns a 24 character hex id like the real backend's
func (s *Server) newIDLocked() string {
	s.nextID++
	return fmt.Sprintf("%024x", s.nextID)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.countRequests)
	r.Use(s.applyOverrides)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Get("/profile", s.profile)
			r.Post("/forgot-password", s.forgotPassword)
			r.Put("/reset-password/{token}", s.resetPassword)
			r.Put("/change-password", s.changePassword)
		})
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", s.listPosts)
			r.Post("/", s.createPost)
			r.Get("/{id}", s.getPost)
			r.Put("/{id}", s.updatePost)
			r.Delete("/{id}", s.deletePost)
		})
		r.Route("/comments", func(r chi.Router) {
			r.Get("/blog/{blogId}", s.listComments)
			r.Post("/blog/{blogId}", s.createComment)
			r.Get("/{id}", s.getComment)
			r.Put("/{id}", s.updateComment)
			r.Delete("/{id}", s.deleteComment)
		})
	})
	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.requests, 1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) applyOverrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		h, ok := s.overrides[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			h(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes an envelope response
func WriteJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, _ := json.Marshal(body)
	w.Write(data)
}

func ok(w http.ResponseWriter, status int, message string, data interface{}) {
	body := map[string]interface{}{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	WriteJSON(w, status, body)
}

func fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]interface{}{"success": false, "message": message})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// currentUserLocked resolves the bearer token, or nil
func (s *Server) currentUserLocked(r *http.Request) *User {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	id, ok := s.tokens[token]
	if !ok {
		return nil
	}
	return s.userByIDLocked(id)
}

func (s *Server) userByIDLocked(id string) *User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Server) findPostLocked(id string) *Post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) findCommentLocked(id string) *Comment {
	for _, c := range s.comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func userJSON(u *User) map[string]interface{} {
	return map[string]interface{}{"_id": u.ID, "username": u.Username, "email": u.Email}
}

func (s *Server) postJSONLocked(p *Post) map[string]interface{} {
	author := interface{}(p.AuthorID)
	if u := s.userByIDLocked(p.AuthorID); u != nil {
		author = map[string]interface{}{"_id": u.ID, "username": u.Username}
	}
	return map[string]interface{}{
		"_id":          p.ID,
		"title":        p.Title,
		"content":      p.Content,
		"author":       author,
		"category":     p.Category,
		"isPublished":  p.IsPublished,
		"createdAt":    p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":    p.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"commentCount": p.CommentCount,
	}
}

func commentJSON(c *Comment) map[string]interface{} {
	return map[string]interface{}{
		"_id":         c.ID,
		"blog":        c.PostID,
		"user":        c.UserID,
		"commenter":   c.Commenter,
		"commentText": c.CommentText,
		"createdAt":   c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func pagination(page, limit, total int, totalKey string) map[string]interface{} {
	totalPages := (total + limit - 1) / limit
	return map[string]interface{}{
		"currentPage": page,
		"totalPages":  totalPages,
		totalKey:      total,
		"hasNextPage": page < totalPages,
		"hasPrevPage": page > 1,
	}
}

func bounds(page, limit, total int) (int, int) {
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return start, end
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[req.Username]
	if !exists || u.Password != req.Password {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	ok(w, http.StatusOK, "Login successful", map[string]interface{}{
		"user":  userJSON(u),
		"token": s.issueTokenLocked(u),
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Username]; exists {
		WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "User already exists",
			"errors":  []map[string]string{{"path": "username", "msg": "Username is already taken"}},
		})
		return
	}
	u := s.addUserLocked(req.Username, req.Email, req.Password)
	ok(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user":  userJSON(u),
		"token": s.issueTokenLocked(u),
	})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, token failed")
		return
	}
	ok(w, http.StatusOK, "", map[string]interface{}{"user": userJSON(u)})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email {
			token := "reset-" + uuid.NewString()
			s.resetTokens[token] = u.Username
			WriteJSON(w, http.StatusOK, map[string]interface{}{
				"success":    true,
				"message":    "Password reset email sent",
				"previewUrl": "https://mail.example.test/preview/" + token,
			})
			return
		}
	}
	fail(w, http.StatusNotFound, "No user found with that email")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	token := chi.URLParam(r, "token")
	username, exists := s.resetTokens[token]
	if !exists {
		fail(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	delete(s.resetTokens, token)
	u := s.users[username]
	u.Password = req.Password
	ok(w, http.StatusOK, "Password reset successful", map[string]interface{}{
		"user":  userJSON(u),
		"token": s.issueTokenLocked(u),
	})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, token failed")
		return
	}
	if u.Password != req.CurrentPassword {
		fail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	u.Password = req.NewPassword
	ok(w, http.StatusOK, "Password changed successfully", nil)
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*Post
	search := strings.ToLower(q.Get("search"))
	for _, p := range s.posts {
		if search != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Content), search) {
			continue
		}
		if c := q.Get("category"); c != "" && p.Category != c {
			continue
		}
		if a := q.Get("author"); a != "" {
			if u := s.userByIDLocked(p.AuthorID); u == nil || (u.Username != a && u.ID != a) {
				continue
			}
		}
		matched = append(matched, p)
	}

	asc := q.Get("sortOrder") == "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		if asc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start, end := bounds(page, limit, len(matched))
	blogs := make([]map[string]interface{}, 0, end-start)
	for _, p := range matched[start:end] {
		blogs = append(blogs, s.postJSONLocked(p))
	}
	ok(w, http.StatusOK, "", map[string]interface{}{
		"blogs":      blogs,
		"pagination": pagination(page, limit, len(matched), "totalBlogs"),
	})
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findPostLocked(chi.URLParam(r, "id"))
	if p == nil {
		fail(w, http.StatusNotFound, "Blog not found")
		return
	}
	ok(w, http.StatusOK, "", s.postJSONLocked(p))
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		Category    string `json:"category"`
		IsPublished bool   `json:"isPublished"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		fail(w, http.StatusBadRequest, "Title is required")
		return
	}
	now := s.now()
	p := &Post{
		ID:          s.newIDLocked(),
		Title:       req.Title,
		Content:     req.Content,
		AuthorID:    u.ID,
		Category:    req.Category,
		IsPublished: req.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.posts = append(s.posts, p)
	ok(w, http.StatusCreated, "Blog created successfully", s.postJSONLocked(p))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Category    *string `json:"category"`
		IsPublished *bool   `json:"isPublished"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	p := s.findPostLocked(chi.URLParam(r, "id"))
	if p == nil {
		fail(w, http.StatusNotFound, "Blog not found")
		return
	}
	if p.AuthorID != u.ID {
		fail(w, http.StatusForbidden, "Not authorized to update this blog")
		return
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.IsPublished != nil {
		p.IsPublished = *req.IsPublished
	}
	p.UpdatedAt = s.now()
	ok(w, http.StatusOK, "Blog updated successfully", s.postJSONLocked(p))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	id := chi.URLParam(r, "id")
	p := s.findPostLocked(id)
	if p == nil {
		fail(w, http.StatusNotFound, "Blog not found")
		return
	}
	if p.AuthorID != u.ID {
		fail(w, http.StatusForbidden, "Not authorized to delete this blog")
		return
	}

	kept := s.posts[:0]
	for _, existing := range s.posts {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	s.posts = kept

	comments := s.comments[:0]
	for _, c := range s.comments {
		if c.PostID != id {
			comments = append(comments, c)
		}
	}
	s.comments = comments

	ok(w, http.StatusOK, "Blog deleted successfully", nil)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	postID := chi.URLParam(r, "blogId")
	if s.findPostLocked(postID) == nil {
		fail(w, http.StatusNotFound, "Blog not found")
		return
	}

	var matched []*Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			matched = append(matched, c)
		}
	}
	if r.URL.Query().Get("sortOrder") == "desc" {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	start, end := bounds(page, limit, len(matched))
	comments := make([]map[string]interface{}, 0, end-start)
	for _, c := range matched[start:end] {
		comments = append(comments, commentJSON(c))
	}
	ok(w, http.StatusOK, "", map[string]interface{}{
		"comments":   comments,
		"pagination": pagination(page, limit, len(matched), "totalComments"),
	})
}

func (s *Server) getComment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findCommentLocked(chi.URLParam(r, "id"))
	if c == nil {
		fail(w, http.StatusNotFound, "Comment not found")
		return
	}
	ok(w, http.StatusOK, "", commentJSON(c))
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Commenter   string `json:"commenter"`
		CommentText string `json:"commentText"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	postID := chi.URLParam(r, "blogId")
	if s.findPostLocked(postID) == nil {
		fail(w, http.StatusNotFound, "Blog not found")
		return
	}
	if strings.TrimSpace(req.CommentText) == "" {
		fail(w, http.StatusBadRequest, "Comment text is required")
		return
	}
	c := s.addCommentLocked(postID, u, req.CommentText)
	if req.Commenter != "" {
		c.Commenter = req.Commenter
	}
	ok(w, http.StatusCreated, "Comment added successfully", commentJSON(c))
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommentText string `json:"commentText"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	c := s.findCommentLocked(chi.URLParam(r, "id"))
	if c == nil {
		fail(w, http.StatusNotFound, "Comment not found")
		return
	}
	if c.UserID != u.ID {
		fail(w, http.StatusForbidden, "Not authorized to update this comment")
		return
	}
	c.CommentText = req.CommentText
	ok(w, http.StatusOK, "Comment updated successfully", commentJSON(c))
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUserLocked(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	id := chi.URLParam(r, "id")
	c := s.findCommentLocked(id)
	if c == nil {
		fail(w, http.StatusNotFound, "Comment not found")
		return
	}
	if c.UserID != u.ID {
		fail(w, http.StatusForbidden, "Not authorized to delete this comment")
		return
	}

	kept := s.comments[:0]
	for _, existing := range s.comments {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	s.comments = kept
	if p := s.findPostLocked(c.PostID); p != nil && p.CommentCount > 0 {
		p.CommentCount--
	}
	ok(w, http.StatusOK, "Comment deleted successfully", nil)
}
