// Package gueststore keeps the cart and favorites of a visitor who is not
// signed in. State is device scoped and survives restarts until it is merged
// into an account.
package gueststore

import (
	"context"
	"sync"
)

// Storage keys. Values are JSON text, like browser local storage.
const (
	KeyToken            = "token"
	KeyCart             = "cart"
	KeyFavorites        = "favorites"
	KeySessionID        = "sessionId"
	KeyCartSyncKey      = "cartSyncKey"
	KeyFavoritesSyncKey = "favoritesSyncKey"
)

// Store is device-scoped string storage.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Watcher is implemented by stores that can report writes made by another
// process. Watch blocks until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
