package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
)

func TestIsOwner(t *testing.T) {
	alice := &api.User{ID: "000000000000000000000001", Username: "alice"}

	cases := []struct {
		name   string
		user   *api.User
		author api.AuthorRef
		want   bool
	}{
		{"same id", alice, api.AuthorRef{ID: alice.ID, Username: "alice"}, true},
		{"id wins over name", alice, api.AuthorRef{ID: "000000000000000000000002", Username: "alice"}, false},
		{"legacy name only", alice, api.AuthorRef{Username: "alice"}, true},
		{"legacy other name", alice, api.AuthorRef{Username: "bob"}, false},
		{"no author", alice, api.AuthorRef{}, false},
		{"anonymous", nil, api.AuthorRef{ID: alice.ID}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsOwner(tc.user, api.Post{Author: tc.author}))
		})
	}
}

func TestCanModifyComment(t *testing.T) {
	alice := &api.User{ID: "000000000000000000000001", Username: "alice"}

	assert.True(t, CanModifyComment(alice, api.Comment{UserID: alice.ID, Commenter: "someone"}))
	assert.False(t, CanModifyComment(alice, api.Comment{UserID: "000000000000000000000002", Commenter: "alice"}))
	assert.True(t, CanModifyComment(alice, api.Comment{Commenter: "alice"}))
	assert.False(t, CanModifyComment(alice, api.Comment{}))
	assert.False(t, CanModifyComment(nil, api.Comment{Commenter: "alice"}))
}
