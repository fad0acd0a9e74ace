// Package explorer opens directories in the host's file browser.
package explorer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// runCommand starts the platform file browser. Replaced in tests.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open shows the given directory in the platform file browser. The
// directory must already exist; nothing is created.
func Open(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		return fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	name, args := browserCommand(runtime.GOOS, dir)
	if err := runCommand(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	return nil
}

// browserCommand returns the file browser invocation for the given platform.
func browserCommand(goos, dir string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{dir}
	case "darwin":
		return "open", []string{dir}
	default:
		return "xdg-open", []string{dir}
	}
}
