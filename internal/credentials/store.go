// Package credentials persists exchange API keys in a local JSON file so
// they survive restarts without living in the main configuration.
package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aion-lab/aion-trading/pkg/errors"
)

// Credentials holds an exchange API key pair.
type Credentials struct {
	APIKey      string    `json:"api_key"`
	APISecret   string    `json:"api_secret"`
	LastUpdated time.Time `json:"last_updated"`
}

// IsZero reports whether no credentials are stored.
func (c Credentials) IsZero() bool {
	return c.APIKey == "" && c.APISecret == ""
}

// Store reads and writes a credentials file. All operations are serialized.
type Store struct {
	path string

	mu sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads credentials from disk. A missing file yields zero credentials,
// not an error.
func (s *Store) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}

		return Credentials{}, errors.Wrap(errors.ErrCodeCredentialStore, "failed to read credentials file", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, errors.Wrap(errors.ErrCodeCredentialStore, "failed to parse credentials file", err)
	}

	return creds, nil
}

// Save writes credentials to disk with owner-only permissions.
func (s *Store) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if creds.APIKey == "" || creds.APISecret == "" {
		return errors.New(errors.ErrCodeMissingParameter, "both api_key and api_secret are required")
	}

	creds.LastUpdated = time.Now()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeCredentialStore, "failed to encode credentials", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(errors.ErrCodeCredentialStore, "failed to create credentials directory", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeCredentialStore, "failed to write credentials file", err)
	}

	return nil
}

// Clear removes the credentials file. Clearing a missing file is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeCredentialStore, "failed to remove credentials file", err)
	}

	return nil
}
