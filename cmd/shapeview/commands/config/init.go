package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/shapeview/internal/cli/prompt"
	"github.com/marmos91/shapeview/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample configuration file",
	Long: `Write a commented sample configuration listing the two reference datasets.

Without --config the file is created at $XDG_CONFIG_HOME/shapeview/config.yaml.
An existing file is only replaced after confirmation or with --force.

Examples:
  shapeview config init
  shapeview config init --config ./shapeview.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file without asking")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	force := false
	if _, err := os.Stat(path); err == nil {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("%s exists. Overwrite", path), initForce)
		if err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
			}
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		force = true
	}

	if err := config.InitConfigToPath(path, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration written to %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Point storage at the folder holding your datasets")
	_, _ = fmt.Fprintln(out, "  2. Check it with: shapeview config validate")
	_, _ = fmt.Fprintln(out, "  3. Start the server: shapeview serve")
	return nil
}
