package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Stream terminal output and events",
	Long:  "Connect to the daemon and stream live terminal output, download progress, and state changes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := MustConnect()
		defer client.Close()

		events, err := client.StreamEvents()
		if err != nil {
			return fmt.Errorf("stream events: %w", err)
		}

		fmt.Println("Attached to terminal streams (Ctrl+C to detach)")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-sigCh:
				fmt.Println()
				client.StopEventStream()
				fmt.Println("Detached")
				return nil

			case result, ok := <-events:
				if !ok {
					fmt.Println("Connection closed")
					return nil
				}
				if result.Err != nil {
					return fmt.Errorf("receive event: %w", result.Err)
				}
				displayEvent(result.Event)
			}
		}
	},
}

func displayEvent(event *daemon.StreamEvent) {
	switch event.Type {
	case daemon.EventLog:
		fmt.Println(event.Line)
	case daemon.EventDownloadProgress:
		if event.Total > 0 {
			fmt.Printf("Download: %d%% (%d / %d bytes)\n", event.Percent, event.Downloaded, event.Total)
		} else {
			fmt.Printf("Download: %d bytes\n", event.Downloaded)
		}
	case daemon.EventDownloadComplete:
		if event.Success {
			fmt.Println("Download complete.")
		} else {
			fmt.Println("Download failed.")
		}
	case daemon.EventAutoStart:
		if event.Success {
			fmt.Println("Terminal auto-started after download.")
		} else {
			fmt.Println("Auto-start failed.")
		}
	case daemon.EventState:
		fmt.Printf("State: %s -> %s\n", event.OldState, event.NewState)
	default:
		fmt.Printf("%s: %s\n", event.Type, event.Line)
	}
}

func init() {
	rootCmd.AddCommand(attachCmd)
}
