package service

import (
	"context"
	"time"

	"github.com/blogdeck/blogdeck/cli/pkg/app"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
	"github.com/blogdeck/blogdeck/cli/pkg/output"
	"github.com/blogdeck/blogdeck/cli/pkg/prompter"
	"github.com/blogdeck/blogdeck/cli/pkg/validation"
)

type AuthService struct {
	state *app.State
}

// NewAuthService creates a new auth service
func NewAuthService(state *app.State) *AuthService {
	return &AuthService{state: state}
}

// Login signs in, prompting for anything not given
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	ctx = background(ctx)
	if s.state.Auth.IsAuthenticated() {
		output.PrintWarning("Already logged in as %s", s.state.Auth.User().Username)
		ok, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	username, err := promptIfEmpty(username, "Username: ")
	if err != nil {
		return err
	}
	password, err = passwordIfEmpty(password, "Password: ")
	if err != nil {
		return err
	}

	output.PrintInfo("Authenticating...")
	if err := s.state.Auth.Login(ctx, username, password); err != nil {
		return err
	}

	output.PrintSuccess("✓ Login successful!")
	return s.printUser()
}

// Register creates an account and signs in as it
func (s *AuthService) Register(ctx context.Context, username, email, password, confirmPassword string) error {
	ctx = background(ctx)
	username, err := promptIfEmpty(username, "Username: ")
	if err != nil {
		return err
	}
	email, err = promptIfEmpty(email, "Email: ")
	if err != nil {
		return err
	}
	password, err = passwordIfEmpty(password, "Password: ")
	if err != nil {
		return err
	}
	confirmPassword, err = passwordIfEmpty(confirmPassword, "Confirm password: ")
	if err != nil {
		return err
	}

	if err := validation.Register(username, email, password, confirmPassword); err != nil {
		return err
	}

	output.PrintInfo("Creating account...")
	if err := s.state.Auth.Register(ctx, username, email, password); err != nil {
		return err
	}

	output.PrintSuccess("✓ Account created! You are now logged in.")
	return s.printUser()
}

// Logout ends the local session
func (s *AuthService) Logout(ctx context.Context, force bool) error {
	ctx = background(ctx)
	if !s.state.Auth.IsAuthenticated() {
		output.PrintWarning("Not logged in")
		return nil
	}

	ok, err := confirm(force, "Logout?")
	if err != nil || !ok {
		return err
	}

	if err := s.state.Auth.Logout(ctx); err != nil {
		logger.Error("Failed to delete credentials", "error", err)
		return err
	}
	s.state.Comments.ClearAll()

	output.PrintSuccess("✓ Logged out successfully")
	return nil
}

// Status shows the held session without contacting the server
func (s *AuthService) Status(ctx context.Context) error {
	if !s.state.Auth.IsAuthenticated() {
		if output.IsStructured() {
			return output.Print("", map[string]interface{}{"authenticated": false})
		}
		output.PrintInfo("Not logged in. Run 'blogdeck auth login' to sign in.")
		return nil
	}

	user := s.state.Auth.User()
	fields := []output.Field{
		{Key: "authenticated", Value: true},
		{Key: "username", Value: user.Username},
		{Key: "email", Value: user.Email},
		{Key: "id", Value: user.ID},
	}

	if claims, err := s.state.Auth.TokenClaims(); err == nil {
		if !claims.ExpiresAt.IsZero() {
			fields = append(fields, output.Field{Key: "expires", Value: claims.ExpiresAt.Local().Format(time.RFC1123)})
			if claims.Expired(time.Now()) {
				fields = append(fields, output.Field{Key: "expired", Value: true})
			}
		}
	} else {
		logger.Debug("Token is not a JWT", "error", err)
	}

	return output.PrintRecord("Session", fields)
}

// Verify checks the held token against the server
func (s *AuthService) Verify(ctx context.Context) error {
	ctx = background(ctx)
	if !s.state.Auth.IsAuthenticated() {
		return clierrors.NotLoggedInError()
	}

	output.PrintInfo("Verifying session...")
	if !s.state.Auth.VerifyAuth(ctx) {
		return clierrors.SessionExpiredError(s.state.Auth.LastError())
	}

	output.PrintSuccess("✓ Session is valid")
	return s.printUser()
}

// ChangePassword changes the signed-in user's password
func (s *AuthService) ChangePassword(ctx context.Context, current, newPassword, confirmPassword string) error {
	ctx = background(ctx)
	if !s.state.Auth.IsAuthenticated() {
		return clierrors.NotLoggedInError()
	}

	current, err := passwordIfEmpty(current, "Current password: ")
	if err != nil {
		return err
	}
	newPassword, err = passwordIfEmpty(newPassword, "New password: ")
	if err != nil {
		return err
	}
	confirmPassword, err = passwordIfEmpty(confirmPassword, "Confirm new password: ")
	if err != nil {
		return err
	}

	if err := validation.ChangePassword(current, newPassword, confirmPassword); err != nil {
		return err
	}

	msg, err := s.state.Auth.ChangePassword(ctx, current, newPassword)
	if err != nil {
		return sessionErr(s.state, err)
	}
	if msg == "" {
		msg = "Password changed successfully"
	}
	output.PrintSuccess("✓ %s", msg)
	return nil
}

// ForgotPassword requests a reset email
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	ctx = background(ctx)
	email, err := promptIfEmpty(email, "Email: ")
	if err != nil {
		return err
	}

	msg, previewURL, err := s.state.Auth.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}

	if output.IsStructured() {
		return output.Print("", map[string]interface{}{"message": msg, "previewUrl": previewURL})
	}
	if msg == "" {
		msg = "Password reset email sent"
	}
	output.PrintSuccess("✓ %s", msg)
	if previewURL != "" {
		output.PrintInfo("Preview: %s", previewURL)
	}
	return nil
}

// ResetPassword sets a new password with an emailed token and signs in
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	ctx = background(ctx)
	token, err := promptIfEmpty(token, "Reset token: ")
	if err != nil {
		return err
	}
	password, err = passwordIfEmpty(password, "New password: ")
	if err != nil {
		return err
	}
	confirmPassword, err = passwordIfEmpty(confirmPassword, "Confirm new password: ")
	if err != nil {
		return err
	}

	if err := validation.ResetPassword(token, password, confirmPassword); err != nil {
		return err
	}

	if err := s.state.Auth.ResetPassword(ctx, token, password); err != nil {
		return err
	}

	output.PrintSuccess("✓ Password reset successful")
	return s.printUser()
}

func (s *AuthService) printUser() error {
	user := s.state.Auth.User()
	if user == nil {
		return nil
	}
	return output.PrintRecord("Logged in as "+user.Username, []output.Field{
		{Key: "Username", Value: user.Username},
		{Key: "Email", Value: user.Email},
		{Key: "ID", Value: user.ID},
	})
}
