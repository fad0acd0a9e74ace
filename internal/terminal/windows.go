package terminal

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Default bounds for the Windows escalation ladder.
const (
	windowsKillTimeout  = 10 * time.Second
	windowsQueryTimeout = 3 * time.Second
	windowsSettleDelay  = 1 * time.Second
)

// WindowsTerminator escalates through taskkill strategies. The JVM hosting
// the terminal routinely ignores cooperative shutdown signals on Windows, so
// gentle methods are skipped entirely:
//
//  1. Kill the child's process tree by PID, then verify no process matching
//     the image name and command-line marker survives.
//  2. Kill every process matching both the image name and the marker.
//  3. Kill every process with the image name, regardless of command line.
//     This can take down unrelated Java applications and is logged as a
//     warning.
//
// Each step runs only if the previous step's post-settle verification still
// finds a live match.
type WindowsTerminator struct {
	runner Runner
	logf   LogFunc

	// Overridable in tests.
	KillTimeout  time.Duration
	QueryTimeout time.Duration
	SettleDelay  time.Duration
}

// NewWindowsTerminator creates the Windows escalation strategy.
func NewWindowsTerminator(runner Runner, logf LogFunc) *WindowsTerminator {
	return &WindowsTerminator{
		runner:       runner,
		logf:         logf,
		KillTimeout:  windowsKillTimeout,
		QueryTimeout: windowsQueryTimeout,
		SettleDelay:  windowsSettleDelay,
	}
}

// Terminate implements Terminator.
func (t *WindowsTerminator) Terminate(target Target) error {
	t.logf("Windows detected - using forceful termination for terminal process")

	// Step 1: kill the specific process tree.
	t.logf("Using taskkill /F /T /PID %d", target.PID)
	if out, err := t.kill("/F", "/T", "/PID", strconv.Itoa(target.PID)); err != nil {
		t.logf("taskkill by PID failed: %v (%s)", err, strings.TrimSpace(out))
	} else {
		t.logf("Process tree killed with taskkill.")
	}
	time.Sleep(t.SettleDelay)
	if !t.matchRunning(target) {
		t.logf("Terminal process confirmed stopped.")
		return nil
	}
	t.logf("Process may still be running, trying command-line filter...")

	// Step 2: kill everything matching image + command line marker.
	t.logf("Killing all %s processes running %s", target.Image, target.Marker)
	if out, err := t.kill("/F",
		"/FI", "IMAGENAME eq "+target.Image,
		"/FI", "COMMANDLINE eq *"+target.Marker+"*"); err != nil {
		t.logf("Command line filter kill failed: %v (%s)", err, strings.TrimSpace(out))
	} else {
		t.logf("Processes killed by command line filter.")
	}
	time.Sleep(t.SettleDelay)
	if !t.matchRunning(target) {
		t.logf("Terminal process confirmed stopped.")
		return nil
	}

	// Step 3: last resort. May affect unrelated processes with the same
	// image name.
	t.logf("WARNING: killing ALL %s processes", target.Image)
	if out, err := t.kill("/F", "/IM", target.Image); err != nil {
		t.logf("Image name kill failed: %v (%s)", err, strings.TrimSpace(out))
	} else {
		t.logf("All %s processes killed.", target.Image)
	}
	time.Sleep(t.SettleDelay)

	if t.matchRunning(target) {
		return ErrTerminationIncomplete
	}
	t.logf("Terminal process confirmed stopped.")
	return nil
}

// kill runs taskkill with the given arguments under the kill timeout.
func (t *WindowsTerminator) kill(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.KillTimeout)
	defer cancel()
	return t.runner.Run(ctx, "taskkill", args...)
}

// matchRunning queries the process list for live processes matching the
// target's image name and command-line marker. A failed query is treated as
// "no match" and logged.
func (t *WindowsTerminator) matchRunning(target Target) bool {
	ctx, cancel := context.WithTimeout(context.Background(), t.QueryTimeout)
	defer cancel()

	out, err := t.runner.Run(ctx, "tasklist",
		"/FI", "IMAGENAME eq "+target.Image,
		"/FI", "COMMANDLINE eq *"+target.Marker+"*",
		"/FO", "CSV")
	if err != nil {
		t.logf("Error checking for %s processes: %v", target.Image, err)
		return false
	}

	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, target.Image) {
			count++
		}
	}
	if count > 0 {
		t.logf("Found %d %s processes still running with %s", count, target.Image, target.Marker)
		return true
	}
	return false
}
