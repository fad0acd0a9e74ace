package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

// DefaultDownloadURL is where the terminal jar is fetched from.
const DefaultDownloadURL = "https://download-stable.thetadata.us/ThetaTerminal.jar"

// Settings are the manager's own optional knobs, loaded from
// ~/.thetamgr/config.toml. Every field has a working default; the file does
// not need to exist.
type Settings struct {
	// DownloadURL overrides the jar download location.
	DownloadURL string `toml:"download-url"`

	// JarPath overrides where the jar is stored and launched from.
	JarPath string `toml:"jar-path"`

	// JavaBin overrides the java executable used to launch the terminal.
	JavaBin string `toml:"java-bin"`

	// LogLevel sets daemon log verbosity ("debug", "info", "warn", "error").
	LogLevel string `toml:"log-level"`

	// LogPath overrides the daemon log file location.
	LogPath string `toml:"log-path"`
}

// LoadSettings loads the manager settings from the default path.
// Returns nil settings and nil error if the file doesn't exist.
func LoadSettings() (*Settings, error) {
	path, err := paths.SettingsPath()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFromPath(path)
}

// LoadSettingsFromPath loads settings from a specific path.
// Returns nil settings and nil error if the file doesn't exist.
func LoadSettingsFromPath(path string) (*Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetDownloadURL returns the configured download URL or the default.
func (s *Settings) GetDownloadURL() string {
	if s != nil && s.DownloadURL != "" {
		return s.DownloadURL
	}
	return DefaultDownloadURL
}

// GetJarPath returns the configured jar path, or the default under the
// manager base directory.
func (s *Settings) GetJarPath() (string, error) {
	if s != nil && s.JarPath != "" {
		return s.JarPath, nil
	}
	return paths.JarPath()
}

// GetJavaBin returns the configured java executable or "java".
func (s *Settings) GetJavaBin() string {
	if s != nil && s.JavaBin != "" {
		return s.JavaBin
	}
	return "java"
}

// GetLogLevel returns the configured log level string or "info".
func (s *Settings) GetLogLevel() string {
	if s != nil && s.LogLevel != "" {
		return s.LogLevel
	}
	return "info"
}

// GetLogPath returns the configured log path or empty (meaning the default).
func (s *Settings) GetLogPath() string {
	if s != nil {
		return s.LogPath
	}
	return ""
}
