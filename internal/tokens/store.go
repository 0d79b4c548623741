// Package tokens persists API tokens for the CLI between runs. Tokens are
// stored one per service in the user cache directory, readable only by the
// owner.
package tokens

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appDir = "upnext"

// Service names accepted by the store.
const (
	ServiceTodoist = "todoist"
	ServiceNotion  = "notion"
)

// Store reads and writes service tokens under a base directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at the user cache directory.
func NewStore() (*Store, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}
	return &Store{dir: filepath.Join(base, appDir)}, nil
}

// NewStoreAt returns a store rooted at an explicit directory.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(service string) (string, error) {
	switch service {
	case ServiceTodoist, ServiceNotion:
		return filepath.Join(s.dir, service+".token"), nil
	}
	return "", fmt.Errorf("unknown service %q", service)
}

// Save writes a token for a service. The directory is created with owner-only
// permissions on first use.
func (s *Store) Save(service, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	file, err := s.path(service)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(file, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load returns the stored token for a service, or an error if none exists.
func (s *Store) Load(service string) (string, error) {
	file, err := s.path(service)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("no stored %s token", service)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("stored %s token is empty", service)
	}
	return token, nil
}

// Has reports whether a token exists for a service.
func (s *Store) Has(service string) bool {
	_, err := s.Load(service)
	return err == nil
}

// Delete removes a stored token. Deleting a token that does not exist is
// not an error.
func (s *Store) Delete(service string) error {
	file, err := s.path(service)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
