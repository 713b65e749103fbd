package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
)

func requireMessage(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, clierrors.Is(err, clierrors.ErrorTypeValidation))
	assert.Equal(t, want, clierrors.Message(err))
}

func TestPost(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    string
	}{
		{"valid", "Hello", "This content is long enough.", ""},
		{"empty", "", "", "Please fill in both title and content"},
		{"short title", "Hey", "This content is long enough.", "Title must be at least 5 characters long"},
		{"title padded with spaces", "  Hey  ", "This content is long enough.", "Title must be at least 5 characters long"},
		{"short content", "Hello", "too short", "Content must be at least 20 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Post(tt.title, tt.content)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			requireMessage(t, err, tt.want)
		})
	}
}

func TestPostReportsEveryField(t *testing.T) {
	err := Post("Hey", "short")

	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	require.Len(t, cliErr.Fields, 2)
	assert.Equal(t, "title", cliErr.Fields[0].Field)
	assert.Equal(t, "content", cliErr.Fields[1].Field)
}

func TestPostEdit(t *testing.T) {
	assert.NoError(t, PostEdit(nil, nil))

	content := "A sufficiently long replacement body."
	assert.NoError(t, PostEdit(nil, &content))

	empty := "   "
	requireMessage(t, PostEdit(&empty, nil), "Title is required")

	short := "abc"
	requireMessage(t, PostEdit(&short, nil), "Title must be at least 5 characters long")

	blank := ""
	requireMessage(t, PostEdit(nil, &blank), "Content is required")

	brief := "too short"
	requireMessage(t, PostEdit(nil, &brief), "Content must be at least 20 characters long")

	err := PostEdit(&empty, &brief)
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	require.Len(t, cliErr.Fields, 2)
	assert.Equal(t, "title", cliErr.Fields[0].Field)
	assert.Equal(t, "content", cliErr.Fields[1].Field)
}

func TestComment(t *testing.T) {
	assert.NoError(t, Comment("Nice post"))
	assert.NoError(t, Comment(strings.Repeat("a", MaxCommentLength)))

	requireMessage(t, Comment("   "), "Comment cannot be empty")
	requireMessage(t, Comment(strings.Repeat("a", MaxCommentLength+1)), "Comment cannot exceed 500 characters")
}

func TestCommentCountsCharactersNotBytes(t *testing.T) {
	assert.NoError(t, Comment(strings.Repeat("é", MaxCommentLength)))
}

func TestLogin(t *testing.T) {
	assert.NoError(t, Login("alice", "secret1"))
	requireMessage(t, Login("", "secret1"), "Please fill in all fields")
	requireMessage(t, Login("al", "secret1"), "Username must be at least 3 characters long")
	requireMessage(t, Login("alice", "12345"), "Password must be at least 6 characters long")
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		confirm  string
		want     string
	}{
		{"valid", "alice42", "alice@example.com", "secret1", "secret1", ""},
		{"missing email", "alice", "", "secret1", "secret1", "Please fill in all fields"},
		{"bad email", "alice", "not-an-email", "secret1", "secret1", "Please enter a valid email address"},
		{"non alphanumeric", "alice_1", "alice@example.com", "secret1", "secret1", "Username must only contain letters and numbers"},
		{"too long", strings.Repeat("a", 31), "alice@example.com", "secret1", "secret1", "Username must be at most 30 characters long"},
		{"mismatch", "alice", "alice@example.com", "secret1", "secret2", "Passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Register(tt.username, tt.email, tt.password, tt.confirm)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			requireMessage(t, err, tt.want)
		})
	}
}

func TestChangePassword(t *testing.T) {
	assert.NoError(t, ChangePassword("secret1", "secret2", "secret2"))
	requireMessage(t, ChangePassword("", "secret2", "secret2"), "Please fill in all fields")
	requireMessage(t, ChangePassword("secret1", "short", "short"), "New password must be at least 6 characters long")
	requireMessage(t, ChangePassword("secret1", "secret1", "secret1"), "New password must be different from current password")
	requireMessage(t, ChangePassword("secret1", "secret2", "secret3"), "New passwords do not match")
}

func TestForgotPassword(t *testing.T) {
	assert.NoError(t, ForgotPassword("alice@example.com"))
	requireMessage(t, ForgotPassword(""), "Please enter your email address")
	requireMessage(t, ForgotPassword("alice"), "Please enter a valid email address")
}

func TestResetPassword(t *testing.T) {
	assert.NoError(t, ResetPassword("tok", "secret1", "secret1"))
	requireMessage(t, ResetPassword("", "secret1", "secret1"), "This password reset link is invalid or malformed")
	requireMessage(t, ResetPassword("tok", "secret1", "secret2"), "Passwords do not match")
}
