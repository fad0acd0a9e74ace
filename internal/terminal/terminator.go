package terminal

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
)

// ErrTerminationIncomplete means the termination protocol was exhausted but
// a matching process was still detected. The manager is still marked
// not-running (optimistic teardown); the caller is warned that a process may
// have leaked.
var ErrTerminationIncomplete = errors.New("terminal process may still be running")

// LogFunc receives the step-by-step termination log so a stuck shutdown can
// be diagnosed.
type LogFunc func(format string, args ...any)

// Runner executes an external command and returns its combined output.
// Implementations must honor context cancellation. Replaced in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Target describes the child process a Terminator must bring down.
type Target struct {
	// PID of the launched child.
	PID int

	// Image is the process image name hosting the terminal (java.exe on
	// Windows).
	Image string

	// Marker is a command-line substring identifying the terminal among
	// other processes with the same image, normally the jar file name.
	Marker string

	// Process is the launched child's handle.
	Process *os.Process

	// Exited is closed once the child has been reaped.
	Exited <-chan struct{}
}

// Terminator kills the supervised child using a platform-appropriate
// escalation strategy. Implementations return nil when the child's death was
// verified and ErrTerminationIncomplete otherwise.
type Terminator interface {
	Terminate(target Target) error
}

// NewTerminator selects the termination strategy for the current host.
func NewTerminator(logf LogFunc) Terminator {
	if runtime.GOOS == "windows" {
		return NewWindowsTerminator(execRunner{}, logf)
	}
	return NewPosixTerminator(logf)
}
