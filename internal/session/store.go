// Package session tracks in-progress workout completion state. The
// accumulator is ephemeral working memory: it is flushed through the log
// aggregation pipeline when the user finishes, and nothing in it except the
// completion flags and instance ids is ever trusted for persistence.
package session

import (
	"errors"
	"sync"
)

// ErrNoSession is returned by Store.Load when no blob is stored for the key.
var ErrNoSession = errors.New("no session stored")

// Key scopes a session to one user working through one workout set. Two
// users on the same device, or one user switching workouts, never see each
// other's progress.
type Key struct {
	UserID       int64
	WorkoutSetID int64
}

// Store persists serialized session blobs. The memory implementation backs
// tests; the SQLite implementation survives process restarts the way browser
// session storage survives a reload.
type Store interface {
	Load(key Key) ([]byte, error)
	Save(key Key, data []byte) error
	Delete(key Key) error
}

// MemoryStore is a map-backed Store.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[Key][]byte)}
}

func (m *MemoryStore) Load(key Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNoSession
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryStore) Save(key Key, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return nil
}

func (m *MemoryStore) Delete(key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}
