package session

import (
	"context"
	"sync"
)

// SignOutFunc is invoked after a store clears its session. It is the
// single exit path to the unauthenticated surface: whatever owns the
// view layer registers its navigation here.
type SignOutFunc func()

// Store is the single source of truth for who is signed in and with
// what credentials. Save and Clear are atomic full replacements; the
// stored session is never merged field by field.
type Store interface {
	// Load reads the current session. Absent or malformed persisted
	// state yields the zero session, never an error the caller must
	// distinguish from "signed out".
	Load(ctx context.Context) (Session, error)

	// Save persists the full session. Sessions violating the
	// credential-pair invariant are rejected.
	Save(ctx context.Context, s Session) error

	// Clear removes the session and fires the sign-out hook once.
	Clear(ctx context.Context) error
}

// MemoryStore is an in-process Store. It backs tests and throwaway
// sessions; production clients use SQLiteStore.
type MemoryStore struct {
	mu      sync.RWMutex
	current Session
	onClear SignOutFunc
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// OnSignOut registers the hook fired by Clear. Passing nil removes it.
func (m *MemoryStore) OnSignOut(fn SignOutFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClear = fn
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.current = Session{}
	hook := m.onClear
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}
