package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/blogdeck/blogdeck/cli/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	logger.Debug("Attempting login", "username", username)

	var result AuthResult
	env, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     loginRequest{Username: username, Password: password},
		fallback: "Login failed",
	}, &result)
	if err != nil {
		return nil, err
	}

	result.Message = env.Message
	logger.Debug("Login successful", "username", result.User.Username)
	return &result, nil
}

// Register creates a new account and returns its first session
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	logger.Debug("Attempting registration", "username", username, "email", email)

	var result AuthResult
	env, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     registerRequest{Username: username, Email: email, Password: password},
		fallback: "Registration failed",
	}, &result)
	if err != nil {
		return nil, err
	}

	result.Message = env.Message
	return &result, nil
}

// Profile returns the user the token belongs to
func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	logger.Debug("Fetching profile")

	var data struct {
		User User `json:"user"`
	}
	if _, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/auth/profile",
		token:    token,
		fallback: "Failed to get profile",
	}, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// ForgotPassword asks the server to email a reset link. Demo servers also
// return a preview URL for the message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (message, previewURL string, err error) {
	env, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/forgot-password",
		body:     forgotPasswordRequest{Email: email},
		fallback: "Failed to send password reset email",
	}, nil)
	if err != nil {
		return "", "", err
	}
	return env.Message, env.PreviewURL, nil
}

// ResetPassword sets a new password using an emailed reset token
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) (*AuthResult, error) {
	var result AuthResult
	env, err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/auth/reset-password/" + url.PathEscape(resetToken),
		body:     resetPasswordRequest{Password: password},
		fallback: "Failed to reset password",
	}, &result)
	if err != nil {
		return nil, err
	}

	result.Message = env.Message
	return &result, nil
}

// ChangePassword changes the signed-in user's password
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) (string, error) {
	env, err := c.do(ctx, call{
		method:   http.MethodPut,
		path:     "/auth/change-password",
		token:    token,
		body:     changePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword},
		fallback: "Failed to change password",
	}, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
