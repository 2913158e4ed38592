package commands

import (
	"os"

	"github.com/spf13/cobra"

	"tasktide/cmd/tasktide/output"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect tasktide configuration settings.

Configuration is stored at ~/.config/tasktide/config.yml by default. A file
ending in .toml is read and written as TOML.

Examples:
  # Show current configuration
  tasktide config show

  # Show config file location
  tasktide config path`,
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration settings as YAML (default) or JSON.

Examples:
  tasktide config show
  tasktide config show --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Web.JWTSecret != "" {
			shown.Web.JWTSecret = "********"
		}
		if !formatter.Structured() {
			return output.NewFormatter(output.FormatYAML, os.Stdout).Print(shown)
		}
		return formatter.Print(shown)
	},
}

// configPathCmd shows the config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		printer.Println("%s", loader.GetConfigPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd)
}
