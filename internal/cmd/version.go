package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blogdeck/blogdeck/cli/pkg/output"
)

// Version is set at build time with -ldflags "-X .../internal/cmd.Version=..."
var Version = "v0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(output.Writer(), "blogdeck %s\n", Version)
	},
}
