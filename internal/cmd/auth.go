package cmd

import (
	"github.com/spf13/cobra"

	"github.com/blogdeck/blogdeck/cli/pkg/service"
)

var (
	authUsername string
	authEmail    string
	authPassword string
	authToken    string
	authForce    bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage your blogdeck session",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long:  "Register a new account and sign in as it. Missing fields are prompted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).Register(cmd.Context(), authUsername, authEmail, authPassword, authPassword)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long:  "Authenticate with username and password. The session is kept until logout or until the server rejects it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).Login(cmd.Context(), authUsername, authPassword)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).Logout(cmd.Context(), authForce)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).Status(cmd.Context())
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the session with the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).Verify(cmd.Context())
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).ChangePassword(cmd.Context(), "", "", "")
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).ForgotPassword(cmd.Context(), authEmail)
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with a reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAuthService(s).ResetPassword(cmd.Context(), authToken, "", "")
	},
}

func init() {
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(verifyCmd)
	authCmd.AddCommand(changePasswordCmd)
	authCmd.AddCommand(forgotPasswordCmd)
	authCmd.AddCommand(resetPasswordCmd)

	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "Username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "Password (prompted when omitted)")
	}
	registerCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Email address")
	forgotPasswordCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Email address of the account")
	resetPasswordCmd.Flags().StringVarP(&authToken, "token", "t", "", "Reset token from the email")
	logoutCmd.Flags().BoolVarP(&authForce, "force", "f", false, "Skip confirmation")
}
