package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/internal/cli/output"
	"github.com/marmos91/shapeview/pkg/config"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective shapeview configuration, after defaults and
SHAPEVIEW_* environment overrides are applied.

By default outputs YAML format. Use --output to change format.

Examples:
  # Show default config as YAML
  shapeview config show

  # Show as JSON
  shapeview config show --output json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := load(configPath(cmd))
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showFormat)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}

// load reads an explicit config file strictly and otherwise falls back to
// the default location and built-in defaults.
func load(path string) (*config.Config, error) {
	if path != "" {
		return config.MustLoad(path)
	}
	return config.Load("")
}
