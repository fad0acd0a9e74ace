package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCredentialsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{"simple", Credentials{Username: "user", Password: "pass"}},
		{"empty", Credentials{}},
		{"quotes and backslashes", Credentials{Username: `us"er`, Password: `pa\ss"word`}},
		{"non-ascii", Credentials{Username: "üser", Password: "密码🔑"}},
		{"whitespace", Credentials{Username: " user ", Password: "p a s s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.json")

			store := NewCredentialStoreWithPath(path)
			if err := store.Save(tt.creds); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			// Fresh instance, same path.
			got := NewCredentialStoreWithPath(path).Load()
			if got != tt.creds {
				t.Errorf("Load() = %+v, want %+v", got, tt.creds)
			}
		})
	}
}

func TestCredentialsLoadMissingFile(t *testing.T) {
	store := NewCredentialStoreWithPath(filepath.Join(t.TempDir(), "nope.json"))

	got := store.Load()
	if got != (Credentials{}) {
		t.Errorf("Load() = %+v, want zero credentials", got)
	}
}

func TestCredentialsLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	got := NewCredentialStoreWithPath(path).Load()
	if got != (Credentials{}) {
		t.Errorf("Load() = %+v, want zero credentials for malformed file", got)
	}
}

func TestCredentialsSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")

	store := NewCredentialStoreWithPath(path)
	if err := store.Save(Credentials{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("credentials file not created: %v", err)
	}
}
