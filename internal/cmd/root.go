package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/blogdeck/blogdeck/cli/pkg/app"
	"github.com/blogdeck/blogdeck/cli/pkg/config"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
	"github.com/blogdeck/blogdeck/cli/pkg/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string

	state *app.State
)

var rootCmd = &cobra.Command{
	Use:   "blogdeck",
	Short: "blogdeck - a terminal client for your blog",
	Long: `blogdeck is a command-line client for a REST blog backend.
Sign in, write and edit posts, join the discussion in the comments
and see how the blog is doing, all from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		// The flag applies to this run only; 'config set output.format' persists it.
		if outputFmt != "" {
			if !output.ValidateOutputFormat(outputFmt) {
				return fmt.Errorf("invalid output format %q (valid: text, table, json, yaml)", outputFmt)
			}
			config.Override("output.format", outputFmt)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if state == nil {
			return
		}
		if err := state.Close(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
		state = nil
	},
}

// appState builds the shared state on first use. Commands that never touch
// the backend (config, version, completion) do not open storage.
func appState(cmd *cobra.Command) (*app.State, error) {
	if state != nil {
		return state, nil
	}
	s, err := app.NewFromConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	state = s
	return state, nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/blogdeck/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "Output format: text, table, json, yaml (default from config)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
