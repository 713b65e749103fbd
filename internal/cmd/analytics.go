package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blogdeck/blogdeck/cli/pkg/service"
)

var daysAnchor string

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show blog analytics",
	Long: `Summarize every post: totals, average comments per post, the most
active authors, the most commented posts and posts per day over the last
seven days.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var anchor time.Time
		if daysAnchor != "" {
			t, err := time.ParseInLocation(time.DateOnly, daysAnchor, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --days-anchor %q, expected YYYY-MM-DD", daysAnchor)
			}
			anchor = t
		}

		s, err := appState(cmd)
		if err != nil {
			return err
		}
		return service.NewAnalyticsService(s).Show(cmd.Context(), anchor)
	},
}

func init() {
	analyticsCmd.Flags().StringVar(&daysAnchor, "days-anchor", "", "Last day of the per-day window, YYYY-MM-DD (default today)")
}
