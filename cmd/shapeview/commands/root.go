// Package commands implements the shapeview command-line interface.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	configcmd "github.com/marmos91/shapeview/cmd/shapeview/commands/config"
	"github.com/marmos91/shapeview/internal/cli/output"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile      string
	outputFormat string
	noColor      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shapeview",
	Short: "shapeview - Browse and render sharded shape datasets",
	Long: `shapeview looks up block-built shapes in sharded, line-delimited datasets
and renders them as PNG or SVG.

Datasets are folders holding info.json and chunks/chunk_<n>.json, read from a
local directory, an S3 bucket or a web server.

Use "shapeview [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError ends the process with Code after the command already reported
// the failure to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/shapeview/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(datasetsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

// newPrinter builds a printer for the global --format and --no-color flags.
func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format, !noColor), nil
}
