// Package artifact locates and fetches the terminal jar the manager
// supervises.
package artifact

import "os"

// Store answers whether the terminal jar is present on local disk.
type Store struct {
	path string
}

// NewStore creates a store for the jar at the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the jar path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the jar is present. A missing file is a normal
// false, never an error.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}
