// Package logging configures the process-wide slog logger for thetamgr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

// DefaultLogPath returns the default log file path (~/.thetamgr/thetamgr.log).
func DefaultLogPath() string {
	path, err := paths.LogPath()
	if err != nil {
		return "/tmp/thetamgr.log"
	}
	return path
}

// ParseLevel maps a level name ("debug", "info", "warn", "error",
// case-insensitive) to a slog.Level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openLogFile opens the log file for appending, creating parent directories
// as needed. An empty path selects DefaultLogPath.
func openLogFile(path string) (*os.File, error) {
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

func installJSON(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// Setup points the default slog logger at a JSON log file. The returned
// cleanup closes the file.
func Setup(path string, level slog.Level) (cleanup func(), err error) {
	f, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	installJSON(f, level)
	return func() { f.Close() }, nil
}

// SetupMulti logs to the file and an additional writer, for running the
// daemon in the foreground with logs mirrored to stderr.
func SetupMulti(path string, extra io.Writer, level slog.Level) (cleanup func(), err error) {
	f, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	installJSON(io.MultiWriter(f, extra), level)
	return func() { f.Close() }, nil
}

// SetupTest points the default logger at the given writer in text format, at
// debug level.
func SetupTest(w io.Writer) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// LogPanic recovers a panic, logs it with a stack trace, and hands the
// recovered value to onRecover when provided. Defer it at the top of every
// goroutine the daemon spawns:
//
//	defer logging.LogPanic("terminal-reaper", nil)
func LogPanic(name string, onRecover func(any)) {
	r := recover()
	if r == nil {
		return
	}
	slog.Error("panic recovered",
		"goroutine", name,
		"panic", r,
		"stack", string(stackTrace()),
	)
	if onRecover != nil {
		onRecover(r)
	}
}

func stackTrace() []byte {
	buf := make([]byte, 4096)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, len(buf)*2)
	}
}
