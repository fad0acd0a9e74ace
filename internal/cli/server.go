package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/artifact"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/config"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/logging"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/supervisor"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/terminal"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the thetamgr daemon server",
	Long:  "Commands for managing the thetamgr daemon server lifecycle.",
}

var serverLogStderr bool

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the thetamgr daemon server",
	Long:  "Run the thetamgr daemon in the foreground. The daemon supervises the terminal process and serves CLI requests over a Unix socket.",
	Args:  cobra.NoArgs,
	RunE:  runServerStart,
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the thetamgr daemon server",
	Long:  "Stop the running thetamgr daemon server. This will terminate the terminal process.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := MustConnect()
		defer client.Close()

		if err := client.Shutdown(); err != nil {
			return fmt.Errorf("shutdown daemon: %w", err)
		}

		fmt.Println("thetamgr daemon stopped")
		return nil
	},
}

func runServerStart(cmd *cobra.Command, args []string) error {
	if running, pid := daemon.IsDaemonRunning(""); running {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	daemon.CleanStalePID("")

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logPath := settings.GetLogPath()
	if logPath == "" {
		logPath = logging.DefaultLogPath()
	}
	level := logging.ParseLevel(settings.GetLogLevel())
	var cleanup func()
	if serverLogStderr {
		cleanup, err = logging.SetupMulti(logPath, os.Stderr, level)
	} else {
		cleanup, err = logging.Setup(logPath, level)
	}
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer cleanup()

	if err := daemon.WritePID(""); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer func() { _ = daemon.RemovePID("") }()

	jarPath, err := settings.GetJarPath()
	if err != nil {
		return fmt.Errorf("resolve jar path: %w", err)
	}
	credStore, err := config.NewCredentialStore()
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	regions, err := config.NewRegions()
	if err != nil {
		return fmt.Errorf("open region config: %w", err)
	}

	manager := terminal.New(terminal.Config{
		Store:       artifact.NewStore(jarPath),
		Downloader:  artifact.NewDownloader(settings.GetDownloadURL(), jarPath),
		Credentials: credStore,
		Regions:     regions,
		JavaBin:     settings.GetJavaBin(),
		Image:       terminal.DefaultImage(),
	})

	sup := supervisor.New(manager)
	srv := daemon.NewServer(getSocketPath(), sup)
	sup.SetServer(srv)

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	fmt.Printf("thetamgr daemon running (socket %s)\n", srv.SocketPath())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		fmt.Printf("received %s, shutting down\n", sig)
	case <-sup.ShutdownCh():
		fmt.Println("shutdown requested, stopping")
	}

	sup.Shutdown()
	return srv.Stop()
}

func init() {
	serverStartCmd.Flags().BoolVar(&serverLogStderr, "log-stderr", false, "mirror daemon logs to stderr")
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
	rootCmd.AddCommand(serverCmd)
}
