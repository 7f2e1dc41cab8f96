package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the shapeview configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  shapeview config validate

  # Validate specific config file
  shapeview config validate --config /etc/shapeview/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}

	displayPath := path
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if warnings := warningsFor(cfg); len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Storage type:     %s\n", cfg.Storage.Type)
	_, _ = fmt.Fprintf(out, "  Datasets:         %d (default: %s)\n", len(cfg.Datasets), cfg.Datasets[0].Key)
	_, _ = fmt.Fprintf(out, "  Shapes per chunk: %d\n", cfg.ShapesPerChunk)
	_, _ = fmt.Fprintf(out, "  Canvas:           %dx%d\n", cfg.Canvas.Width, cfg.Canvas.Height)
	_, _ = fmt.Fprintf(out, "  API port:         %d\n", cfg.Server.Port)
	_, _ = fmt.Fprintf(out, "  Log level:        %s\n", cfg.Logging.Level)
	return nil
}

// warningsFor reports settings that are valid but likely mistakes.
func warningsFor(cfg *config.Config) []string {
	var warnings []string

	if cfg.Storage.Type == config.StorageFilesystem {
		if info, err := os.Stat(cfg.Storage.Filesystem.Path); err != nil || !info.IsDir() {
			warnings = append(warnings, fmt.Sprintf("storage directory %q does not exist", cfg.Storage.Filesystem.Path))
		}
	}
	if cfg.Storage.Type == config.StorageMemory {
		warnings = append(warnings, "memory storage starts empty; every metadata load will fail")
	}
	if cfg.Metrics.Enabled && cfg.Server.IsEnabled() && cfg.Metrics.Port == cfg.Server.Port {
		warnings = append(warnings, fmt.Sprintf("metrics and API share port %d", cfg.Server.Port))
	}
	if !cfg.Server.IsEnabled() && !cfg.Metrics.Enabled {
		warnings = append(warnings, "API server and metrics are both disabled; 'shapeview serve' has nothing to run")
	}
	return warnings
}
