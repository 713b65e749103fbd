package cmd

import (
	"github.com/spf13/cobra"

	"github.com/blogdeck/blogdeck/cli/pkg/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		return service.NewConfigService().Get(key)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a setting to the user config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewConfigService().Set(args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewConfigService().Path()
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}
