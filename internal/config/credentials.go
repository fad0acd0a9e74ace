// Package config provides persistence for thetamgr configuration: saved
// terminal credentials, optional manager settings, and the terminal's server
// region selection.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

// Credentials are the two opaque strings passed to the terminal at launch.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CredentialStore round-trips credentials to a JSON file on disk.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store using the default credentials path.
func NewCredentialStore() (*CredentialStore, error) {
	path, err := paths.CredentialsPath()
	if err != nil {
		return nil, fmt.Errorf("get credentials path: %w", err)
	}
	return &CredentialStore{path: path}, nil
}

// NewCredentialStoreWithPath creates a store with a custom path.
// This is useful for testing.
func NewCredentialStoreWithPath(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the path to the credentials file.
func (s *CredentialStore) Path() string {
	return s.path
}

// Load reads credentials from disk. A missing file means "no credentials
// yet" and returns zero credentials; a malformed file is logged and treated
// the same way. Neither is an error.
func (s *CredentialStore) Load() Credentials {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("read credentials file failed", "path", s.path, "error", err)
		}
		return Credentials{}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		slog.Warn("parse credentials file failed, treating as empty", "path", s.path, "error", err)
		return Credentials{}
	}
	return creds
}

// Save writes credentials to disk atomically (temp file + rename).
func (s *CredentialStore) Save(creds Credentials) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.path); err != nil {
		os.Remove(tmpFile) // Clean up on failure
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
