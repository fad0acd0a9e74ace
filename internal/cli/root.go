// Package cli implements the thetamgr command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

// thetaDir is the global --theta-dir flag value.
var thetaDir string

var rootCmd = &cobra.Command{
	Use:   "thetamgr",
	Short: "ThetaData terminal supervisor",
	Long:  "thetamgr downloads, launches, and supervises the ThetaData terminal process.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set the base-dir environment variable if --theta-dir is provided.
		// This allows all path helpers to use the override.
		if thetaDir != "" {
			if err := os.Setenv(paths.EnvBaseDir, thetaDir); err != nil {
				return err
			}
		}
		return nil
	},
}

// ThetaDir returns the value of the --theta-dir flag.
func ThetaDir() string {
	return thetaDir
}

func init() {
	rootCmd.PersistentFlags().StringVar(&thetaDir, "theta-dir", "", "base directory for thetamgr data (overrides ~/.thetamgr)")
}

func Execute() error {
	return rootCmd.Execute()
}
