package credentials

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local development.
// It is safe for concurrent use but offers no durability.
type MemoryStore struct {
	mu      sync.RWMutex
	byUUID  map[uuid.UUID]*User
	byLogin map[string]uuid.UUID
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUUID:  make(map[uuid.UUID]*User),
		byLogin: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) Insert(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byLogin[user.LoginName]; exists {
		return ErrDuplicateLogin
	}
	clone := *user
	m.byUUID[user.UUID] = &clone
	m.byLogin[user.LoginName] = user.UUID
	return nil
}

func (m *MemoryStore) FindByLogin(_ context.Context, loginName string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byLogin[loginName]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *m.byUUID[id]
	return &clone, nil
}

func (m *MemoryStore) FindByUUID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byUUID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *MemoryStore) FindProfile(_ context.Context, id uuid.UUID) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byUUID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	profile := user.Profile()
	return &profile, nil
}

func (m *MemoryStore) UpdatePassword(_ context.Context, id uuid.UUID, hash, salt []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byUUID[id]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = append([]byte(nil), hash...)
	user.PasswordSalt = append([]byte(nil), salt...)
	return nil
}

// Delete removes a user record. Used by tests to simulate a deleted account
// behind a live session.
func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byUUID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.byLogin, user.LoginName)
	delete(m.byUUID, id)
	return nil
}
