package cli

import (
	"fmt"

	"github.com/ariel-frischer/progressdots/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect progressdots configuration",
	Long: `Inspect progressdots configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (PROGRESS_*)
  2. Config file passed with --config
  3. User config (~/.config/progressdots/config.yml)
  4. Built-in defaults`,
	Example: `  # Show the effective configuration
  progressdots config show

  # Start a user config from the commented template
  progressdots config template > ~/.config/progressdots/config.yml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print a commented config file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.GetDefaultConfigTemplate())
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configTemplateCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads configuration honoring --config and, for commands that
// define it, --interval.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")
	opts := config.LoadOptions{ConfigPath: configPath}

	if f := cmd.Flags().Lookup("interval"); f != nil && f.Changed {
		interval, _ := cmd.Flags().GetFloat64("interval")
		opts.Overrides = map[string]interface{}{"progress": interval}
	}

	return config.LoadWithOptions(opts)
}
