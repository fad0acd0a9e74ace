package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	stoppedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and terminal status",
	Long:  "Display the status of the thetamgr daemon and the supervised terminal process.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// stateBadge renders the terminal state with color.
func stateBadge(state string, running bool) string {
	switch {
	case running:
		return runningStyle.Render(state)
	case state == "downloading" || state == "launching" || state == "stopping":
		return activityStyle.Render(state)
	default:
		return stoppedStyle.Render(state)
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := ConnectClient()
	if err != nil {
		if errors.Is(err, ErrDaemonNotRunning) {
			fmt.Println("thetamgr daemon is not running")
			fmt.Println("Start it with: thetamgr server start")
			return nil
		}
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	uptime := time.Since(status.Daemon.StartedAt).Truncate(time.Second)
	fmt.Printf("thetamgr daemon running (pid %d, uptime %s)\n\n", status.Daemon.PID, uptime)

	term := status.Terminal
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "State:\t%s\n", stateBadge(term.State, term.Running))
	if term.Running {
		_, _ = fmt.Fprintf(w, "PID:\t%d\n", term.PID)
		_, _ = fmt.Fprintf(w, "Uptime:\t%s\n", time.Since(term.StartedAt).Truncate(time.Second))
	}
	if term.Username != "" {
		_, _ = fmt.Fprintf(w, "Account:\t%s\n", term.Username)
	}
	jar := "missing"
	if term.JarPresent {
		jar = "present"
	}
	_, _ = fmt.Fprintf(w, "Jar:\t%s (%s)\n", jar, term.JarPath)
	if term.Downloading {
		_, _ = fmt.Fprintf(w, "Download:\t%s\n", activityStyle.Render("in progress"))
	}
	_ = w.Flush()

	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
