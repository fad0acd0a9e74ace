package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	startUsername string
	startPassword string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Launch the terminal",
	Long:  "Launch the ThetaData terminal process. Credentials are saved for later runs; omit them to reuse the saved ones. If the terminal jar is missing, a download begins and the terminal starts automatically when it completes.",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	client := MustConnect()
	defer client.Close()

	resp, err := client.Start(startUsername, startPassword)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if resp.DownloadStarted {
		fmt.Println("Terminal jar not found; download started.")
		fmt.Println("The terminal will start automatically when the download completes.")
		fmt.Println("Watch progress with: thetamgr attach")
		return nil
	}

	fmt.Println("Terminal started.")
	return nil
}

func init() {
	startCmd.Flags().StringVarP(&startUsername, "username", "u", "", "ThetaData account username")
	startCmd.Flags().StringVarP(&startPassword, "password", "p", "", "ThetaData account password")
	rootCmd.AddCommand(startCmd)
}
