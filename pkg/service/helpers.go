package service

import (
	"context"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/app"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/prompter"
)

// MaxContentLines bounds interactive post bodies
const MaxContentLines = 500

// session returns the signed-in user and token, or NotLoggedInError
func session(state *app.State) (*api.User, string, error) {
	if !state.Auth.IsAuthenticated() {
		return nil, "", clierrors.NotLoggedInError()
	}
	return state.Auth.User(), state.Auth.Token(), nil
}

// sessionErr maps a rejected token to a session expired error; the 401 hook
// has already ended the session by then.
func sessionErr(state *app.State, err error) error {
	return state.Auth.HandleSessionError(err)
}

// confirm asks unless force is set
func confirm(force bool, label string) (bool, error) {
	if force {
		return true, nil
	}
	return prompter.PromptConfirm(label)
}

// promptIfEmpty asks for value when it was not given on the command line
func promptIfEmpty(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return prompter.PromptString(label)
}

func passwordIfEmpty(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return prompter.PromptPassword(label)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func background(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
