package terminal

import (
	"syscall"
	"time"
)

// Default bounds for graceful-then-forced termination.
const (
	posixGracefulTimeout = 5 * time.Second
	posixKillTimeout     = 5 * time.Second
)

// PosixTerminator sends a graceful termination request and escalates to a
// force kill after a bounded wait. Verification comes from the reaper: the
// target's Exited channel closes once the child has been waited on.
type PosixTerminator struct {
	logf LogFunc

	// Overridable in tests.
	GracefulTimeout time.Duration
	KillTimeout     time.Duration
}

// NewPosixTerminator creates the non-Windows termination strategy.
func NewPosixTerminator(logf LogFunc) *PosixTerminator {
	return &PosixTerminator{
		logf:            logf,
		GracefulTimeout: posixGracefulTimeout,
		KillTimeout:     posixKillTimeout,
	}
}

// Terminate implements Terminator.
func (t *PosixTerminator) Terminate(target Target) error {
	t.logf("Using standard termination")

	if err := target.Process.Signal(syscall.SIGTERM); err != nil {
		// Likely already gone; let the wait below confirm.
		t.logf("Graceful termination request failed: %v", err)
	}

	select {
	case <-target.Exited:
		t.logf("Process terminated gracefully.")
		return nil
	case <-time.After(t.GracefulTimeout):
	}

	t.logf("Graceful shutdown timed out, force killing...")
	if err := target.Process.Kill(); err != nil {
		t.logf("Force kill failed: %v", err)
	}

	select {
	case <-target.Exited:
		t.logf("Process force killed.")
		return nil
	case <-time.After(t.KillTimeout):
		return ErrTerminationIncomplete
	}
}
