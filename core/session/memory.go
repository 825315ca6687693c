package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openmarks/gradebook/pkg/token"
)

// MemoryStore is an in-memory Store and Transactor used by tests and local
// development. WithinTx serializes transactions under one mutex, which gives
// the same effective isolation the durable store provides through
// multi-document transactions.
type MemoryStore struct {
	txMu sync.Mutex

	mu      sync.RWMutex
	byToken map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byToken: make(map[string]*Session)}
}

// WithinTx runs fn while holding the store's transaction lock.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func (m *MemoryStore) Find(_ context.Context, tok token.Token) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.byToken[string(tok)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *sess
	return &clone, nil
}

func (m *MemoryStore) Insert(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byToken[string(sess.Token)]; exists {
		return ErrDuplicateToken
	}
	clone := *sess
	m.byToken[string(sess.Token)] = &clone
	return nil
}

func (m *MemoryStore) Replace(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byToken[string(sess.Token)]; !exists {
		return ErrNotFound
	}
	clone := *sess
	m.byToken[string(sess.Token)] = &clone
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, tok token.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byToken[string(tok)]; !exists {
		return ErrNotFound
	}
	delete(m.byToken, string(tok))
	return nil
}

func (m *MemoryStore) DeleteByUser(_ context.Context, userUUID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key, sess := range m.byToken {
		if sess.UserUUID == userUUID {
			delete(m.byToken, key)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userUUID uuid.UUID, persistent bool, limit int) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Session
	for _, sess := range m.byToken {
		if sess.UserUUID == userUUID && sess.Persistent == persistent {
			out = append(out, *sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Expires.After(out[j].Expires)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) DeleteExpiringBefore(_ context.Context, userUUID uuid.UUID, persistent bool, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key, sess := range m.byToken {
		if sess.UserUUID == userUUID && sess.Persistent == persistent && sess.Expires.Before(cutoff) {
			delete(m.byToken, key)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byToken)
}
