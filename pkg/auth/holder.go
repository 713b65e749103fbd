package auth

import (
	"context"
	"sync"

	"github.com/blogdeck/blogdeck/cli/pkg/api"
	"github.com/blogdeck/blogdeck/cli/pkg/credentials"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
	"github.com/blogdeck/blogdeck/cli/pkg/storage"
	"github.com/blogdeck/blogdeck/cli/pkg/validation"
)

// Holder owns the current session: the signed-in user and bearer token.
// Sessions are created by login, register or a password reset and end on
// logout or the first 401 from an authorized request. They are never renewed.
type Holder struct {
	client *api.Client
	store  storage.Store

	mu        sync.RWMutex
	user      *api.User
	token     string
	loading   bool
	lastError string
}

// NewHolder creates a signed-out holder. Call Restore to pick up a persisted
// session.
func NewHolder(client *api.Client, store storage.Store) *Holder {
	return &Holder{client: client, store: store}
}

// Restore loads the persisted session, if any
func (h *Holder) Restore(ctx context.Context) error {
	creds, err := credentials.Load(ctx, h.store)
	if err != nil {
		return err
	}
	if !creds.IsValid() {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	u := *creds.User
	h.user = &u
	h.token = creds.Token
	logger.Debug("Restored session", "username", u.Username)
	return nil
}

// IsAuthenticated reports whether both a user and a token are held. It does
// not contact the server; see VerifyAuth.
func (h *Holder) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.user != nil && h.token != ""
}

// User returns a copy of the signed-in user, or nil
func (h *Holder) User() *api.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return nil
	}
	u := *h.user
	return &u
}

// Token returns the bearer token, or ""
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Loading reports whether a session request is in flight
func (h *Holder) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// LastError returns the message of the most recent failure
func (h *Holder) LastError() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastError
}

// ClearError forgets the last failure
func (h *Holder) ClearError() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastError = ""
}

// begin marks a request in flight. The lock is never held across a network
// call since the client's 401 hook re-enters the holder.
func (h *Holder) begin() {
	h.mu.Lock()
	h.loading = true
	h.lastError = ""
	h.mu.Unlock()
}

// finish records the outcome of a request and returns err unchanged
func (h *Holder) finish(err error) error {
	h.mu.Lock()
	h.loading = false
	if err != nil {
		h.lastError = clierrors.Message(err)
	}
	h.mu.Unlock()
	return err
}

// fail records a failure that happened before any request was sent
func (h *Holder) fail(err error) error {
	h.mu.Lock()
	h.lastError = clierrors.Message(err)
	h.mu.Unlock()
	return err
}

// establish stores a new session in memory and persists it
func (h *Holder) establish(ctx context.Context, result *api.AuthResult) {
	u := result.User

	h.mu.Lock()
	h.user = &u
	h.token = result.Token
	h.mu.Unlock()

	if err := credentials.Save(ctx, h.store, &credentials.Credentials{User: &u, Token: result.Token}); err != nil {
		logger.Error("Failed to save credentials", "error", err)
	}
}

// clear drops the in-memory session, then the persisted one
func (h *Holder) clear(ctx context.Context) error {
	h.mu.Lock()
	h.user = nil
	h.token = ""
	h.mu.Unlock()

	return credentials.Delete(ctx, h.store)
}

// Login signs in with username and password
func (h *Holder) Login(ctx context.Context, username, password string) error {
	if err := validation.Login(username, password); err != nil {
		return h.fail(err)
	}

	h.begin()
	result, err := h.client.Login(ctx, username, password)
	if err != nil {
		logger.Debug("Login failed", "username", username, "error", err)
		return h.finish(err)
	}

	h.establish(ctx, result)
	logger.Info("Logged in", "username", result.User.Username)
	return h.finish(nil)
}

// Register creates an account and signs in as it
func (h *Holder) Register(ctx context.Context, username, email, password string) error {
	if err := validation.Register(username, email, password, password); err != nil {
		return h.fail(err)
	}

	h.begin()
	result, err := h.client.Register(ctx, username, email, password)
	if err != nil {
		return h.finish(err)
	}

	h.establish(ctx, result)
	logger.Info("Registered", "username", result.User.Username)
	return h.finish(nil)
}

// Logout ends the session locally. There is no server session to invalidate.
func (h *Holder) Logout(ctx context.Context) error {
	logger.Info("Logging out")
	return h.clear(ctx)
}

// VerifyAuth checks the token against the server. On success the user record
// is refreshed; on any failure the session is ended.
func (h *Holder) VerifyAuth(ctx context.Context) bool {
	token := h.Token()
	if token == "" {
		return false
	}

	h.begin()
	user, err := h.client.Profile(ctx, token)
	if err != nil {
		logger.Debug("Token verification failed", "error", err)
		h.finish(err)
		if clearErr := h.clear(ctx); clearErr != nil {
			logger.Error("Failed to delete credentials", "error", clearErr)
		}
		return false
	}

	h.mu.Lock()
	stillCurrent := h.token == token
	if stillCurrent {
		u := *user
		h.user = &u
	}
	h.mu.Unlock()
	h.finish(nil)

	if stillCurrent {
		if err := credentials.Save(ctx, h.store, &credentials.Credentials{User: user, Token: token}); err != nil {
			logger.Error("Failed to save credentials", "error", err)
		}
	}
	return stillCurrent
}

// ChangePassword changes the signed-in user's password. The session stays valid.
func (h *Holder) ChangePassword(ctx context.Context, currentPassword, newPassword string) (string, error) {
	token := h.Token()
	if token == "" {
		return "", h.fail(clierrors.NotLoggedInError())
	}
	if err := validation.ChangePassword(currentPassword, newPassword, newPassword); err != nil {
		return "", h.fail(err)
	}

	h.begin()
	msg, err := h.client.ChangePassword(ctx, token, currentPassword, newPassword)
	return msg, h.finish(err)
}

// ForgotPassword requests a reset email. previewURL is set by demo servers.
func (h *Holder) ForgotPassword(ctx context.Context, email string) (message, previewURL string, err error) {
	if err := validation.ForgotPassword(email); err != nil {
		return "", "", h.fail(err)
	}

	h.begin()
	message, previewURL, err = h.client.ForgotPassword(ctx, email)
	return message, previewURL, h.finish(err)
}

// ResetPassword sets a new password with an emailed token. Success signs the
// user in with the returned session.
func (h *Holder) ResetPassword(ctx context.Context, resetToken, password string) error {
	if err := validation.ResetPassword(resetToken, password, password); err != nil {
		return h.fail(err)
	}

	h.begin()
	result, err := h.client.ResetPassword(ctx, resetToken, password)
	if err != nil {
		return h.finish(err)
	}

	h.establish(ctx, result)
	return h.finish(nil)
}

// HandleUnauthorized ends the session after the server rejected its token
func (h *Holder) HandleUnauthorized() {
	if !h.IsAuthenticated() {
		return
	}
	logger.Warn("Session rejected by server, signing out")
	if err := h.clear(context.Background()); err != nil {
		logger.Error("Failed to delete credentials", "error", err)
	}
}
