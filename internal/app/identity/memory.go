package identity

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is the in-memory Repo implementation. It is the default when no
// DATABASE_URL is configured; identities then live only as long as the
// process, which suits temporary-account-heavy LAN deployments.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]*Identity
}

// NewMemoryRepo returns an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]*Identity)}
}

func (m *MemoryRepo) Create(ctx context.Context, ident *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		if existing.Username == ident.Username {
			return ErrDuplicate
		}
		if ident.Email != "" && strings.EqualFold(existing.Email, ident.Email) {
			return ErrDuplicate
		}
		if existing.AccessToken == ident.AccessToken {
			return ErrDuplicate
		}
	}

	clone := *ident
	m.byID[ident.ID] = &clone
	return nil
}

func (m *MemoryRepo) GetByUsername(ctx context.Context, username string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ident := range m.byID {
		if ident.Username == username {
			clone := *ident
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ident := range m.byID {
		if ident.Email != "" && strings.EqualFold(ident.Email, email) {
			clone := *ident
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) GetByToken(ctx context.Context, token string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ident := range m.byID {
		if ident.AccessToken == token {
			clone := *ident
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) GetByID(ctx context.Context, id string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ident, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *ident
	return &clone, nil
}

func (m *MemoryRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ident, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	ident.LastLogin = at
	return nil
}

func (m *MemoryRepo) UpdateLogin(ctx context.Context, id, accessToken string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ident, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	ident.AccessToken = accessToken
	ident.LastLogin = at
	return nil
}

func (m *MemoryRepo) MakePermanent(ctx context.Context, id, email, passwordHash, accessToken string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ident, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	for otherID, other := range m.byID {
		if otherID != id && other.Email != "" && strings.EqualFold(other.Email, email) {
			return nil, ErrDuplicate
		}
	}

	ident.Email = email
	ident.PasswordHash = passwordHash
	ident.AccessToken = accessToken
	ident.IsTemporary = false
	ident.DeviceID = ""

	clone := *ident
	return &clone, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}
