package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/explorer"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

var openCmd = &cobra.Command{
	Use:       "open {logs|config}",
	Short:     "Open a terminal directory in the file browser",
	Long:      "Open the terminal's log directory or configuration directory in the host's file browser. The directory must exist; the terminal creates it on first run.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"logs", "config"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var dir string
		var err error
		switch args[0] {
		case "logs":
			dir, err = paths.TerminalLogsDir()
		case "config":
			var propsPath string
			propsPath, err = paths.PropertiesPath()
			dir = filepath.Dir(propsPath)
		default:
			return fmt.Errorf("unknown target %q, expected logs or config", args[0])
		}
		if err != nil {
			return err
		}

		if err := explorer.Open(dir); err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		fmt.Printf("Opened %s\n", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
