package terminal

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// fakeRunner scripts taskkill/tasklist responses and records every
// invocation.
type fakeRunner struct {
	calls []string

	// taskkill responses in order.
	killErrs []error

	// tasklist responses in order: true means a matching process line is
	// present.
	queryMatches []bool
	queryErrs    []error

	kills   int
	queries int
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	switch name {
	case "taskkill":
		var err error
		if f.kills < len(f.killErrs) {
			err = f.killErrs[f.kills]
		}
		f.kills++
		return "", err
	case "tasklist":
		i := f.queries
		f.queries++
		if i < len(f.queryErrs) && f.queryErrs[i] != nil {
			return "", f.queryErrs[i]
		}
		if i < len(f.queryMatches) && f.queryMatches[i] {
			return "\"java.exe\",\"1234\",\"Console\",\"1\",\"512,000 K\"\n", nil
		}
		return "INFO: No tasks are running which match the specified criteria.\n", nil
	}
	return "", errors.New("unexpected command: " + name)
}

func discardLog(string, ...any) {}

func newTestWindowsTerminator(r Runner) *WindowsTerminator {
	t := NewWindowsTerminator(r, discardLog)
	t.SettleDelay = 0
	return t
}

func windowsTarget() Target {
	return Target{PID: 1234, Image: "java.exe", Marker: "ThetaTerminal.jar"}
}

func TestWindowsTerminateFirstStepSucceeds(t *testing.T) {
	r := &fakeRunner{queryMatches: []bool{false}}
	term := newTestWindowsTerminator(r)

	if err := term.Terminate(windowsTarget()); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}

	want := []string{
		"taskkill /F /T /PID 1234",
		"tasklist /FI IMAGENAME eq java.exe /FI COMMANDLINE eq *ThetaTerminal.jar* /FO CSV",
	}
	if len(r.calls) != len(want) {
		t.Fatalf("ran %d commands, want %d: %v", len(r.calls), len(want), r.calls)
	}
	for i, c := range want {
		if r.calls[i] != c {
			t.Errorf("command %d = %q, want %q", i, r.calls[i], c)
		}
	}
}

func TestWindowsTerminateEscalatesToCommandLineFilter(t *testing.T) {
	// First verification still sees the process; second does not.
	r := &fakeRunner{queryMatches: []bool{true, false}}
	term := newTestWindowsTerminator(r)

	if err := term.Terminate(windowsTarget()); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}

	if r.kills != 2 {
		t.Errorf("ran %d taskkill commands, want 2", r.kills)
	}
	filterKill := r.calls[2]
	if !strings.Contains(filterKill, "IMAGENAME eq java.exe") ||
		!strings.Contains(filterKill, "COMMANDLINE eq *ThetaTerminal.jar*") {
		t.Errorf("second kill = %q, want image and command-line filters", filterKill)
	}
}

func TestWindowsTerminateEscalatesToImageKill(t *testing.T) {
	r := &fakeRunner{queryMatches: []bool{true, true, false}}
	term := newTestWindowsTerminator(r)

	if err := term.Terminate(windowsTarget()); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}

	if r.kills != 3 {
		t.Fatalf("ran %d taskkill commands, want 3", r.kills)
	}
	if got, want := r.calls[4], "taskkill /F /IM java.exe"; got != want {
		t.Errorf("last-resort kill = %q, want %q", got, want)
	}
}

func TestWindowsTerminateExhaustedReturnsIncomplete(t *testing.T) {
	r := &fakeRunner{queryMatches: []bool{true, true, true}}
	term := newTestWindowsTerminator(r)

	err := term.Terminate(windowsTarget())
	if !errors.Is(err, ErrTerminationIncomplete) {
		t.Fatalf("Terminate() = %v, want ErrTerminationIncomplete", err)
	}
	if r.kills != 3 {
		t.Errorf("ran %d taskkill commands, want 3", r.kills)
	}
}

func TestWindowsTerminateKillFailureStillVerifies(t *testing.T) {
	// taskkill errors (e.g. process already gone) but verification finds
	// nothing running.
	r := &fakeRunner{
		killErrs:     []error{errors.New("exit status 128")},
		queryMatches: []bool{false},
	}
	term := newTestWindowsTerminator(r)

	if err := term.Terminate(windowsTarget()); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}
}

func TestWindowsTerminateQueryErrorTreatedAsStopped(t *testing.T) {
	r := &fakeRunner{queryErrs: []error{errors.New("tasklist unavailable")}}
	term := newTestWindowsTerminator(r)

	if err := term.Terminate(windowsTarget()); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}
	if r.kills != 1 {
		t.Errorf("ran %d taskkill commands, want 1", r.kills)
	}
}

// startChild launches a real child and returns its target with a wired
// Exited channel.
func startChild(t *testing.T, name string, args ...string) (Target, *exec.Cmd) {
	t.Helper()
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start %s: %v", name, err)
	}
	exited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(exited)
	}()
	return Target{
		PID:     cmd.Process.Pid,
		Image:   "java",
		Marker:  "ThetaTerminal.jar",
		Process: cmd.Process,
		Exited:  exited,
	}, cmd
}

func TestPosixTerminateGraceful(t *testing.T) {
	target, _ := startChild(t, "sleep", "60")

	term := NewPosixTerminator(discardLog)
	if err := term.Terminate(target); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}

	select {
	case <-target.Exited:
	default:
		t.Error("child not reaped after Terminate")
	}
}

func TestPosixTerminateEscalatesToKill(t *testing.T) {
	// The shell traps and ignores the graceful signal, forcing escalation.
	target, _ := startChild(t, "sh", "-c", "trap '' TERM; sleep 60")

	term := NewPosixTerminator(discardLog)
	term.GracefulTimeout = 200 * time.Millisecond

	if err := term.Terminate(target); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}
}

func TestPosixTerminateAlreadyExited(t *testing.T) {
	target, cmd := startChild(t, "true")
	<-target.Exited
	_ = cmd

	term := NewPosixTerminator(discardLog)
	if err := term.Terminate(target); err != nil {
		t.Fatalf("Terminate() = %v, want nil", err)
	}
}
