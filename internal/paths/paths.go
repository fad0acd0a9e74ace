// Package paths provides a single source of truth for thetamgr file paths.
// All path helpers honor environment variable overrides for isolated testing.
//
// Path resolution precedence:
//  1. Specific env vars (THETAMGR_SOCKET_PATH, THETAMGR_PID_PATH) take highest priority
//  2. THETAMGR_DIR sets the base directory (derives jar/credentials/socket/pid/log)
//  3. Default behavior (~/.thetamgr, ~/ThetaData/ThetaTerminal) when no env vars are set
package paths

import (
	"os"
	"path/filepath"
)

// Environment variable names for path overrides.
const (
	// EnvBaseDir is the base directory override (e.g., /tmp/thetamgr-test).
	// When set, jar, credentials, socket, PID, and log paths derive from it.
	EnvBaseDir = "THETAMGR_DIR"

	// EnvSocketPath overrides the daemon socket path directly.
	EnvSocketPath = "THETAMGR_SOCKET_PATH"

	// EnvPIDPath overrides the PID file path directly.
	EnvPIDPath = "THETAMGR_PID_PATH"

	// EnvTerminalDir overrides the ThetaTerminal data directory, which the
	// Java terminal owns (logs and config_0.properties live there).
	EnvTerminalDir = "THETAMGR_TERMINAL_DIR"
)

// JarName is the file name of the supervised terminal artifact.
const JarName = "ThetaTerminal.jar"

// PropertiesName is the terminal's own properties file, created by the
// terminal on its first run.
const PropertiesName = "config_0.properties"

// BaseDir returns the thetamgr base directory (~/.thetamgr by default).
// Honors THETAMGR_DIR.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvBaseDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".thetamgr"), nil
}

// JarPath returns the local destination of the terminal jar.
func JarPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, JarName), nil
}

// CredentialsPath returns the path to the saved credentials file.
func CredentialsPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "credentials.json"), nil
}

// SettingsPath returns the path to the optional manager settings file.
func SettingsPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.toml"), nil
}

// LogPath returns the manager's own log file path.
func LogPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "thetamgr.log"), nil
}

// SocketPath returns the daemon socket path.
// Precedence: THETAMGR_SOCKET_PATH > THETAMGR_DIR/thetamgr.sock > ~/.thetamgr/thetamgr.sock
func SocketPath() string {
	if path := os.Getenv(EnvSocketPath); path != "" {
		return path
	}
	base, err := BaseDir()
	if err != nil {
		return "/tmp/thetamgr.sock"
	}
	return filepath.Join(base, "thetamgr.sock")
}

// PIDPath returns the daemon PID file path.
// Precedence: THETAMGR_PID_PATH > THETAMGR_DIR/thetamgr.pid > ~/.thetamgr/thetamgr.pid
func PIDPath() string {
	if path := os.Getenv(EnvPIDPath); path != "" {
		return path
	}
	base, err := BaseDir()
	if err != nil {
		return "/tmp/thetamgr.pid"
	}
	return filepath.Join(base, "thetamgr.pid")
}

// TerminalDir returns the ThetaTerminal data directory
// (~/ThetaData/ThetaTerminal by default). The terminal itself writes its logs
// and properties file here; the manager only reads and edits them.
func TerminalDir() (string, error) {
	if dir := os.Getenv(EnvTerminalDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "ThetaData", "ThetaTerminal"), nil
}

// TerminalLogsDir returns the directory where the terminal writes its logs.
func TerminalLogsDir() (string, error) {
	dir, err := TerminalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// PropertiesPath returns the path to the terminal's config_0.properties file.
func PropertiesPath() (string, error) {
	dir, err := TerminalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PropertiesName), nil
}
