package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseDir(t *testing.T) {
	t.Run("default uses home directory", func(t *testing.T) {
		os.Unsetenv(EnvBaseDir)
		defer os.Unsetenv(EnvBaseDir)

		dir, err := BaseDir()
		if err != nil {
			t.Fatalf("BaseDir() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".thetamgr")
		if dir != expected {
			t.Errorf("BaseDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("THETAMGR_DIR overrides default", func(t *testing.T) {
		os.Setenv(EnvBaseDir, "/tmp/thetamgr-test")
		defer os.Unsetenv(EnvBaseDir)

		dir, err := BaseDir()
		if err != nil {
			t.Fatalf("BaseDir() error = %v", err)
		}
		if dir != "/tmp/thetamgr-test" {
			t.Errorf("BaseDir() = %q, want %q", dir, "/tmp/thetamgr-test")
		}
	})
}

func TestJarPath(t *testing.T) {
	os.Setenv(EnvBaseDir, "/tmp/thetamgr-test")
	defer os.Unsetenv(EnvBaseDir)

	path, err := JarPath()
	if err != nil {
		t.Fatalf("JarPath() error = %v", err)
	}
	expected := "/tmp/thetamgr-test/ThetaTerminal.jar"
	if path != expected {
		t.Errorf("JarPath() = %q, want %q", path, expected)
	}
}

func TestCredentialsPath(t *testing.T) {
	os.Setenv(EnvBaseDir, "/tmp/thetamgr-test")
	defer os.Unsetenv(EnvBaseDir)

	path, err := CredentialsPath()
	if err != nil {
		t.Fatalf("CredentialsPath() error = %v", err)
	}
	expected := "/tmp/thetamgr-test/credentials.json"
	if path != expected {
		t.Errorf("CredentialsPath() = %q, want %q", path, expected)
	}
}

func TestSettingsPath(t *testing.T) {
	os.Setenv(EnvBaseDir, "/tmp/thetamgr-test")
	defer os.Unsetenv(EnvBaseDir)

	path, err := SettingsPath()
	if err != nil {
		t.Fatalf("SettingsPath() error = %v", err)
	}
	expected := "/tmp/thetamgr-test/config.toml"
	if path != expected {
		t.Errorf("SettingsPath() = %q, want %q", path, expected)
	}
}

func TestSocketPath(t *testing.T) {
	t.Run("default uses home directory", func(t *testing.T) {
		os.Unsetenv(EnvBaseDir)
		os.Unsetenv(EnvSocketPath)
		defer func() {
			os.Unsetenv(EnvBaseDir)
			os.Unsetenv(EnvSocketPath)
		}()

		path := SocketPath()
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".thetamgr", "thetamgr.sock")
		if path != expected {
			t.Errorf("SocketPath() = %q, want %q", path, expected)
		}
	})

	t.Run("THETAMGR_DIR derives socket path", func(t *testing.T) {
		os.Setenv(EnvBaseDir, "/tmp/thetamgr-test")
		os.Unsetenv(EnvSocketPath)
		defer func() {
			os.Unsetenv(EnvBaseDir)
			os.Unsetenv(EnvSocketPath)
		}()

		path := SocketPath()
		expected := "/tmp/thetamgr-test/thetamgr.sock"
		if path != expected {
			t.Errorf("SocketPath() = %q, want %q", path, expected)
		}
	})

	t.Run("THETAMGR_SOCKET_PATH overrides THETAMGR_DIR", func(t *testing.T) {
		os.Setenv(EnvBaseDir, "/tmp/thetamgr-test")
		os.Setenv(EnvSocketPath, "/custom/path.sock")
		defer func() {
			os.Unsetenv(EnvBaseDir)
			os.Unsetenv(EnvSocketPath)
		}()

		path := SocketPath()
		expected := "/custom/path.sock"
		if path != expected {
			t.Errorf("SocketPath() = %q, want %q", path, expected)
		}
	})
}

func TestPIDPath(t *testing.T) {
	t.Run("default uses home directory", func(t *testing.T) {
		os.Unsetenv(EnvBaseDir)
		os.Unsetenv(EnvPIDPath)
		defer func() {
			os.Unsetenv(EnvBaseDir)
			os.Unsetenv(EnvPIDPath)
		}()

		path := PIDPath()
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".thetamgr", "thetamgr.pid")
		if path != expected {
			t.Errorf("PIDPath() = %q, want %q", path, expected)
		}
	})

	t.Run("THETAMGR_PID_PATH overrides THETAMGR_DIR", func(t *testing.T) {
		os.Setenv(EnvBaseDir, "/tmp/thetamgr-test")
		os.Setenv(EnvPIDPath, "/custom/path.pid")
		defer func() {
			os.Unsetenv(EnvBaseDir)
			os.Unsetenv(EnvPIDPath)
		}()

		path := PIDPath()
		expected := "/custom/path.pid"
		if path != expected {
			t.Errorf("PIDPath() = %q, want %q", path, expected)
		}
	})
}

func TestTerminalDir(t *testing.T) {
	t.Run("default uses home directory", func(t *testing.T) {
		os.Unsetenv(EnvTerminalDir)
		defer os.Unsetenv(EnvTerminalDir)

		dir, err := TerminalDir()
		if err != nil {
			t.Fatalf("TerminalDir() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, "ThetaData", "ThetaTerminal")
		if dir != expected {
			t.Errorf("TerminalDir() = %q, want %q", dir, expected)
		}
	})

	t.Run("THETAMGR_TERMINAL_DIR overrides default", func(t *testing.T) {
		os.Setenv(EnvTerminalDir, "/tmp/terminal-test")
		defer os.Unsetenv(EnvTerminalDir)

		dir, err := TerminalDir()
		if err != nil {
			t.Fatalf("TerminalDir() error = %v", err)
		}
		if dir != "/tmp/terminal-test" {
			t.Errorf("TerminalDir() = %q, want %q", dir, "/tmp/terminal-test")
		}
	})
}

func TestPropertiesPath(t *testing.T) {
	os.Setenv(EnvTerminalDir, "/tmp/terminal-test")
	defer os.Unsetenv(EnvTerminalDir)

	path, err := PropertiesPath()
	if err != nil {
		t.Fatalf("PropertiesPath() error = %v", err)
	}
	expected := "/tmp/terminal-test/config_0.properties"
	if path != expected {
		t.Errorf("PropertiesPath() = %q, want %q", path, expected)
	}
}

func TestTerminalLogsDir(t *testing.T) {
	os.Setenv(EnvTerminalDir, "/tmp/terminal-test")
	defer os.Unsetenv(EnvTerminalDir)

	dir, err := TerminalLogsDir()
	if err != nil {
		t.Fatalf("TerminalLogsDir() error = %v", err)
	}
	expected := "/tmp/terminal-test/logs"
	if dir != expected {
		t.Errorf("TerminalLogsDir() = %q, want %q", dir, expected)
	}
}
