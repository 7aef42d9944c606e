package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"sevasetu_admin/internal/domain"
)

// fileState is the on-disk layout. Keys are fixed; other tools that share
// the session file (the web console's export, support scripts) rely on them.
type fileState struct {
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	AdminUser    *domain.AdminUser `json:"admin_user,omitempty"`
}

// FileStore keeps the admin session in a JSON file, mode 0600. Writes go
// through a temp file and rename so a crash never leaves a half-written
// session behind.
type FileStore struct {
	path string

	mu sync.RWMutex
	st fileState
}

// NewFileStore loads the session at path. A missing file is an empty
// session, not an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read %s: %w", path, err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &s.st); err != nil {
			return nil, fmt.Errorf("credstore: parse %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *FileStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.AccessToken
}

func (s *FileStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.RefreshToken
}

func (s *FileStore) User() (domain.AdminUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.AdminUser == nil {
		return domain.AdminUser{}, false
	}
	return *s.st.AdminUser, true
}

// SetTokens stores a new access token. An empty refresh keeps the one
// already on disk; refresh rotation is optional on the backend.
func (s *FileStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.AccessToken = access
	if refresh != "" {
		s.st.RefreshToken = refresh
	}
	return s.flushLocked()
}

func (s *FileStore) SetUser(u domain.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.AdminUser = &u
	return s.flushLocked()
}

// Clear wipes the session, in memory and on disk.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = fileState{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credstore: remove %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) flushLocked() error {
	b, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credstore: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: chmod: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("credstore: rename: %w", err)
	}
	return nil
}
