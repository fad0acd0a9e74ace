package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
)

// ErrDaemonNotRunning indicates no daemon is listening on the socket.
var ErrDaemonNotRunning = errors.New("daemon is not running")

// socketPath overrides the socket every command dials. Empty means the
// daemon default.
var socketPath string

// SetSocketPath overrides the daemon socket path, mainly for tests.
func SetSocketPath(path string) {
	socketPath = path
}

func getSocketPath() string {
	if socketPath != "" {
		return socketPath
	}
	return daemon.DefaultSocketPath()
}

// NewClient creates an unconnected daemon client for the configured socket.
func NewClient() *daemon.Client {
	return daemon.NewClient(getSocketPath())
}

// ConnectClient creates and connects a daemon client. A missing socket or a
// refused connection maps to ErrDaemonNotRunning; anything else is wrapped.
func ConnectClient() (*daemon.Client, error) {
	client := NewClient()
	if err := client.Connect(); err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && daemonAbsent(opErr) {
			return nil, ErrDaemonNotRunning
		}
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	return client, nil
}

// daemonAbsent reports whether the dial failure means no daemon is there, as
// opposed to a genuine transport problem.
func daemonAbsent(err *net.OpError) bool {
	return os.IsNotExist(err.Err) ||
		errors.Is(err.Err, syscall.ECONNREFUSED) ||
		errors.Is(err.Err, syscall.ENOENT)
}

// MustConnect connects to the daemon or exits the process with guidance.
// For commands that are meaningless without a daemon.
func MustConnect() *daemon.Client {
	client, err := ConnectClient()
	if err == nil {
		return client
	}
	if errors.Is(err, ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "thetamgr daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with: thetamgr server start")
	} else {
		fmt.Fprintf(os.Stderr, "Error connecting to daemon: %v\n", err)
	}
	os.Exit(1)
	return nil
}

// IsDaemonRunning probes the socket with a throwaway connection.
func IsDaemonRunning() bool {
	client := NewClient()
	if err := client.Connect(); err != nil {
		return false
	}
	client.Close()
	return true
}
