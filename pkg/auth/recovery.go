package auth

import (
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
)

// IsSessionError checks if an error means the held token is no longer accepted
func IsSessionError(err error) bool {
	if err == nil {
		return false
	}
	return clierrors.IsUnauthorized(err) || clierrors.Is(err, clierrors.ErrorTypeSessionExpired)
}

// HandleSessionError turns a rejected-token error into a session expired error
// after making sure the session is gone. There is no refresh flow; the user
// has to sign in again. Other errors pass through unchanged.
func (h *Holder) HandleSessionError(err error) error {
	if !IsSessionError(err) {
		return err
	}

	logger.Debug("Handling session error")
	h.HandleUnauthorized()

	return clierrors.SessionExpiredError(clierrors.Message(err))
}
