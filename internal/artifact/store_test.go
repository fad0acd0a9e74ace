package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ThetaTerminal.jar")

	s := NewStore(path)
	if s.Exists() {
		t.Error("Exists() = true before file is created")
	}

	if err := os.WriteFile(path, []byte("jar"), 0644); err != nil {
		t.Fatal(err)
	}
	if !s.Exists() {
		t.Error("Exists() = false after file is created")
	}
}

func TestStoreExistsDirectoryIsNotArtifact(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	if s.Exists() {
		t.Error("Exists() = true for a directory")
	}
}
