package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
)

var downloadWait bool

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the terminal jar",
	Long:  "Fetch the ThetaData terminal jar. A download already in progress is reused rather than restarted.",
	Args:  cobra.NoArgs,
	RunE:  runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	client := MustConnect()
	defer client.Close()

	// Open the event stream before triggering so no progress is missed.
	var events <-chan daemon.EventResult
	if downloadWait {
		var err error
		events, err = client.StreamEvents()
		if err != nil {
			return fmt.Errorf("stream events: %w", err)
		}
	}

	resp, err := client.Download()
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if resp.Started {
		fmt.Println("Download started.")
	} else {
		fmt.Println("Download already in progress.")
	}

	if !downloadWait {
		return nil
	}

	for result := range events {
		if result.Err != nil {
			return fmt.Errorf("receive event: %w", result.Err)
		}
		switch result.Event.Type {
		case daemon.EventDownloadProgress:
			if result.Event.Total > 0 {
				fmt.Printf("\r%3d%% (%d / %d bytes)", result.Event.Percent, result.Event.Downloaded, result.Event.Total)
			} else {
				fmt.Printf("\r%d bytes", result.Event.Downloaded)
			}
		case daemon.EventDownloadComplete:
			fmt.Println()
			if result.Event.Success {
				fmt.Println("Download complete.")
				return nil
			}
			return fmt.Errorf("download failed")
		}
	}
	return nil
}

func init() {
	downloadCmd.Flags().BoolVarP(&downloadWait, "wait", "w", false, "Wait for the download to finish, showing progress")
	rootCmd.AddCommand(downloadCmd)
}
