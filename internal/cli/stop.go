package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Terminate the terminal",
	Long:  "Terminate the running ThetaData terminal process.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := MustConnect()
		defer client.Close()

		if err := client.Stop(); err != nil {
			return fmt.Errorf("stop: %w", err)
		}

		fmt.Println("Terminal stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
