package credstore

import (
	"sync"

	"sevasetu_admin/internal/domain"
)

// MemStore holds the session in memory. Tests and one-shot scripts use it
// where persisting to disk would be noise.
type MemStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	user    *domain.AdminUser
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

func (m *MemStore) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh
}

func (m *MemStore) User() (domain.AdminUser, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return domain.AdminUser{}, false
	}
	return *m.user, true
}

func (m *MemStore) SetTokens(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	if refresh != "" {
		m.refresh = refresh
	}
	return nil
}

func (m *MemStore) SetUser(u domain.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &u
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.user = "", "", nil
	return nil
}
