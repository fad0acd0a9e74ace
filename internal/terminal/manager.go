package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/artifact"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/config"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/logging"
)

// Errors returned by manager operations.
var (
	// ErrAlreadyRunning means the terminal is already running.
	ErrAlreadyRunning = errors.New("terminal is already running")

	// ErrNotRunning means a stop was requested while nothing was running.
	ErrNotRunning = errors.New("terminal is not running")

	// ErrDownloadStarted means the jar was absent; a download was kicked
	// off and the terminal will auto-start once it completes.
	ErrDownloadStarted = errors.New("terminal jar not found, download started")

	// ErrDownloadInProgress means a download is active and the terminal
	// cannot launch until it finishes.
	ErrDownloadInProgress = errors.New("download in progress")
)

// DefaultSettleDelay is how long the auto-start continuation waits after a
// download completes, giving observers time to process the completion event.
const DefaultSettleDelay = 1 * time.Second

// cleanupWait bounds the teardown-time force kill.
const cleanupWait = 2 * time.Second

// Config configures a Manager.
type Config struct {
	// Store locates the terminal jar on disk.
	Store *artifact.Store

	// Downloader fetches the jar when absent.
	Downloader *artifact.Downloader

	// Credentials persists the username/password across runs.
	Credentials *config.CredentialStore

	// Regions holds the terminal's server region selection.
	Regions *config.Regions

	// BuildCommand builds the child command for the given credentials. The
	// returned command must NOT be started yet. If nil, a
	// "java -jar <jar> <username> <password>" invocation is used.
	BuildCommand func(creds config.Credentials) *exec.Cmd

	// JavaBin is the java executable for the default command ("java").
	JavaBin string

	// Image is the process image name used by Windows termination
	// ("java.exe").
	Image string

	// Terminator overrides the platform-selected termination strategy.
	Terminator Terminator

	// SettleDelay overrides DefaultSettleDelay.
	SettleDelay time.Duration
}

// Manager supervises the single terminal child process. It owns the process
// handle exclusively; observers interact only through operations and the
// Notifier.
type Manager struct {
	cfg      Config
	notifier *Notifier

	mu sync.Mutex
	// +checklocks:mu
	state State
	// +checklocks:mu
	cmd *exec.Cmd
	// +checklocks:mu
	exited chan struct{}
	// +checklocks:mu
	startedAt time.Time
	// +checklocks:mu
	creds config.Credentials
	// +checklocks:mu
	autoStart bool
}

// New creates a Manager. Credentials are loaded from the store immediately
// so a saved username/password is available before the first start request.
func New(cfg Config) *Manager {
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.JavaBin == "" {
		cfg.JavaBin = "java"
	}
	if cfg.Image == "" {
		cfg.Image = "java.exe"
	}

	m := &Manager{
		cfg:      cfg,
		notifier: &Notifier{},
		state:    StateIdle,
	}
	if cfg.Terminator == nil {
		m.cfg.Terminator = NewTerminator(m.logf)
	}
	m.creds = cfg.Credentials.Load()
	return m
}

// Notifier returns the manager's observer registration surface.
func (m *Manager) Notifier() *Notifier {
	return m.notifier
}

// Credentials returns the most recently supplied (or loaded) credentials.
func (m *Manager) Credentials() config.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

// Regions returns the terminal's server region selection.
func (m *Manager) Regions() *config.Regions {
	return m.cfg.Regions
}

// ArtifactPresent reports whether the terminal jar exists on disk.
func (m *Manager) ArtifactPresent() bool {
	return m.cfg.Store.Exists()
}

// JarPath returns the jar's on-disk location.
func (m *Manager) JarPath() string {
	return m.cfg.Store.Path()
}

// Downloading reports whether a download session is active.
func (m *Manager) Downloading() bool {
	return m.cfg.Downloader.InProgress()
}

// PID returns the running child's process ID, or 0.
func (m *Manager) PID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil && m.cmd.Process != nil {
		return m.cmd.Process.Pid
	}
	return 0
}

// StartedAt returns when the running child was launched.
func (m *Manager) StartedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startedAt
}

// State returns the current lifecycle state, reconciling a child that
// exited on its own.
func (m *Manager) State() State {
	m.reconcile()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle && m.cfg.Downloader.InProgress() {
		return StateDownloading
	}
	return m.state
}

// IsRunning reports whether the terminal is currently running. A child that
// exited on its own is detected here and the running flag cleared; this
// self-healing check is the only way an externally-terminated child is
// noticed.
func (m *Manager) IsRunning() bool {
	m.reconcile()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateRunning
}

// reconcile clears the running flag if the child has already been reaped.
func (m *Manager) reconcile() {
	m.mu.Lock()
	exited := m.exited
	running := m.state == StateRunning
	m.mu.Unlock()

	if !running || exited == nil {
		return
	}
	select {
	case <-exited:
		m.setState(StateIdle)
	default:
	}
}

// Start launches the terminal with the given credentials.
//
// The credentials are persisted unconditionally, even when the launch cannot
// proceed, so a retry does not require re-entry. When the jar is absent a
// download is started and an auto-start intent recorded; ErrDownloadStarted
// is returned and the launch happens later, reported through the auto-start
// notification. ErrDownloadInProgress is returned while a download is
// active. ErrAlreadyRunning is returned when the terminal is already up.
func (m *Manager) Start(creds config.Credentials) error {
	if m.IsRunning() {
		return ErrAlreadyRunning
	}

	m.mu.Lock()
	m.creds = creds
	m.mu.Unlock()
	if err := m.cfg.Credentials.Save(creds); err != nil {
		m.logf("Error saving credentials: %v", err)
	}

	if !m.cfg.Store.Exists() {
		m.logf("%s not found. Starting download...", filepath.Base(m.cfg.Store.Path()))
		m.mu.Lock()
		m.autoStart = true
		m.mu.Unlock()
		m.StartDownload()
		return ErrDownloadStarted
	}

	if m.cfg.Downloader.InProgress() {
		m.logf("Download in progress. Please wait until download completes.")
		return ErrDownloadInProgress
	}

	return m.launch(creds)
}

// launch spawns the child process and begins the output read loop.
func (m *Manager) launch(creds config.Credentials) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	m.state = StateLaunching
	m.mu.Unlock()
	m.notifier.emitStateChange(StateIdle, StateLaunching)

	cmd := m.buildCommand(creds)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		m.setState(StateIdle)
		m.logf("Error starting terminal: %v", err)
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		m.setState(StateIdle)
		m.logf("Error starting terminal: %v", err)
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		m.setState(StateIdle)
		m.logf("Error starting terminal: %v", err)
		return fmt.Errorf("start terminal: %w", err)
	}

	exited := make(chan struct{})
	m.mu.Lock()
	m.cmd = cmd
	m.exited = exited
	m.startedAt = time.Now()
	m.state = StateRunning
	m.mu.Unlock()
	m.notifier.emitStateChange(StateLaunching, StateRunning)

	m.logf("JAR started with PID: %d", cmd.Process.Pid)
	m.logf("Terminal started successfully.")

	// Both output streams feed the same log sink; the reaper waits for the
	// readers before calling Wait so the pipes are fully drained.
	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer logging.LogPanic("terminal-stdout", nil)
		defer readers.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				m.notifier.emitLog(line)
			}
		}
	}()
	go func() {
		defer logging.LogPanic("terminal-stderr", nil)
		defer readers.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				m.notifier.emitLog(line)
			}
		}
	}()

	go m.reap(cmd, exited, &readers)

	return nil
}

// reap waits for the output readers and the child, closes the exited
// channel, and clears the running flag when the child ended on its own.
func (m *Manager) reap(cmd *exec.Cmd, exited chan struct{}, readers *sync.WaitGroup) {
	defer logging.LogPanic("terminal-reaper", nil)

	readers.Wait()
	err := cmd.Wait()
	close(exited)

	m.mu.Lock()
	selfExit := m.state == StateRunning && m.cmd == cmd
	m.mu.Unlock()

	if selfExit {
		m.setState(StateIdle)
		if err != nil {
			m.logf("Process ended: %v", err)
		} else {
			m.logf("Process ended.")
		}
	}
	slog.Debug("terminal child reaped", "pid", cmd.Process.Pid, "error", err)
}

// buildCommand creates the child command for the given credentials.
func (m *Manager) buildCommand(creds config.Credentials) *exec.Cmd {
	if m.cfg.BuildCommand != nil {
		return m.cfg.BuildCommand(creds)
	}
	return exec.Command(m.cfg.JavaBin, "-jar", m.cfg.Store.Path(), creds.Username, creds.Password)
}

// Stop terminates the running terminal using the platform strategy.
//
// The manager is marked not-running even when the final verification still
// detects a matching process; in that case ErrTerminationIncomplete is
// returned so the caller knows cleanup may be incomplete. Every escalation
// step is reported through the log sink.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if m.state != StateRunning || m.cmd == nil {
		m.mu.Unlock()
		m.logf("Stop called but terminal not running.")
		return ErrNotRunning
	}
	m.state = StateStopping
	cmd := m.cmd
	exited := m.exited
	m.mu.Unlock()
	m.notifier.emitStateChange(StateRunning, StateStopping)

	pid := cmd.Process.Pid
	m.logf("Stopping terminal process with PID: %d", pid)

	err := m.cfg.Terminator.Terminate(Target{
		PID:     pid,
		Image:   m.cfg.Image,
		Marker:  filepath.Base(m.cfg.Store.Path()),
		Process: cmd.Process,
		Exited:  exited,
	})

	// Optimistic teardown: not-running regardless of the outcome.
	m.mu.Lock()
	m.state = StateIdle
	m.cmd = nil
	m.mu.Unlock()
	m.notifier.emitStateChange(StateStopping, StateIdle)

	if err != nil {
		m.logf("WARNING: terminal process may still be running! Check the process list manually.")
		return err
	}
	m.logf("Terminal process stopped and verified.")
	return nil
}

// StartDownload begins fetching the jar if no session is active and reports
// whether a new session began. Progress and completion are reported through
// the notifier; if an auto-start intent is pending, a successful download
// launches the terminal after the settle delay.
func (m *Manager) StartDownload() bool {
	return m.cfg.Downloader.StartAsync(m.notifier.emitProgress, m.handleDownloadComplete)
}

// handleDownloadComplete runs on the downloader's goroutine once a session
// ends. The downloader has already cleared its in-progress flag.
func (m *Manager) handleDownloadComplete(success bool) {
	if success {
		m.logf("Download completed successfully.")
	} else {
		m.logf("Error downloading %s.", filepath.Base(m.cfg.Store.Path()))
	}
	m.notifier.emitDownloadComplete(success)

	m.mu.Lock()
	pending := m.autoStart
	m.autoStart = false
	creds := m.creds
	m.mu.Unlock()

	if !pending {
		return
	}
	if !success {
		// A failed transfer is never retried automatically; starting again
		// here would kick off a fresh download and loop.
		m.logf("Download failed. Run start again to retry.")
		m.notifier.emitAutoStartComplete(false)
		return
	}

	go func() {
		defer logging.LogPanic("terminal-autostart", nil)
		// Give observers time to process the completion event first.
		time.Sleep(m.cfg.SettleDelay)
		m.logf("Auto-starting terminal after download...")
		err := m.Start(creds)
		if err != nil {
			m.logf("Failed to auto-start terminal: %v", err)
		}
		m.notifier.emitAutoStartComplete(err == nil)
	}()
}

// setState transitions to a new state and notifies observers.
func (m *Manager) setState(new State) {
	m.mu.Lock()
	old := m.state
	m.state = new
	m.mu.Unlock()
	if old != new {
		m.notifier.emitStateChange(old, new)
	}
}

// logf formats one operational line, writes it to the structured log, and
// forwards it to registered log observers.
func (m *Manager) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	slog.Info(line)
	m.notifier.emitLog(line)
}

// Cleanup force-kills the child at process-wide shutdown. It uses a short
// bounded wait and suppresses every error; it runs during exit and must
// never raise.
func (m *Manager) Cleanup() {
	defer func() { _ = recover() }()

	m.mu.Lock()
	cmd := m.cmd
	exited := m.exited
	active := m.state == StateRunning || m.state == StateStopping
	m.state = StateIdle
	m.cmd = nil
	m.mu.Unlock()

	if !active || cmd == nil || cmd.Process == nil {
		return
	}

	_ = cmd.Process.Kill()
	if exited != nil {
		select {
		case <-exited:
		case <-time.After(cleanupWait):
		}
	}
}

// DefaultImage returns the platform's expected image name for the java
// runtime hosting the terminal.
func DefaultImage() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}
