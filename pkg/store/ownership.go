package store

import "github.com/blogdeck/blogdeck/cli/pkg/api"

// IsOwner reports whether user wrote post. The author id decides when the
// record carries one; records without an id fall back to the username.
func IsOwner(user *api.User, post api.Post) bool {
	if user == nil {
		return false
	}
	if post.Author.ID != "" {
		return user.ID != "" && user.ID == post.Author.ID
	}
	return post.Author.Username != "" && user.Username == post.Author.Username
}

// CanModifyComment reports whether user may edit or delete comment
func CanModifyComment(user *api.User, comment api.Comment) bool {
	if user == nil {
		return false
	}
	if comment.UserID != "" {
		return user.ID != "" && user.ID == comment.UserID
	}
	return comment.Commenter != "" && user.Username == comment.Commenter
}
