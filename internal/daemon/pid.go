package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

// DefaultPIDPath returns the default PID file path.
func DefaultPIDPath() string {
	return paths.PIDPath()
}

func pidPathOrDefault(path string) string {
	if path == "" {
		return DefaultPIDPath()
	}
	return path
}

// WritePID records the current process ID in the PID file, creating the
// parent directory as needed.
func WritePID(path string) error {
	path = pidPathOrDefault(path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create pid directory: %w", err)
	}
	data := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// ReadPID parses the process ID from the PID file.
func ReadPID(path string) (int, error) {
	path = pidPathOrDefault(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, err
		}
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid: %w", err)
	}
	return pid, nil
}

// RemovePID deletes the PID file. A missing file is not an error.
func RemovePID(path string) error {
	path = pidPathOrDefault(path)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// IsProcessRunning reports whether a process with the given PID exists,
// probing with signal 0. EPERM counts as running: the process exists even
// though we may not signal it.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	switch err := proc.Signal(syscall.Signal(0)); {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		return true
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		return false
	default:
		return false
	}
}

// IsDaemonRunning reports whether the PID file names a live process, and
// that PID when it does.
func IsDaemonRunning(pidPath string) (bool, int) {
	pid, err := ReadPID(pidPath)
	if err != nil {
		return false, 0
	}
	if !IsProcessRunning(pid) {
		return false, 0
	}
	return true, pid
}

// CleanStalePID removes the PID file unless it names a live process.
// Reports whether a removal was attempted.
func CleanStalePID(pidPath string) bool {
	if running, _ := IsDaemonRunning(pidPath); running {
		return false
	}
	_ = RemovePID(pidPath)
	return true
}
