package snapshot

import (
	"context"
	"sync"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// MemoryStore keeps snapshots in process memory. It is the default store
// and loses everything on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	closed    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, id string) (*vdom.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	data, ok := m.snapshots[id]
	if !ok {
		return nil, notFound(id)
	}
	// Stored as encoded bytes, so callers never share nodes with the store.
	return decode(id, data)
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, id string, node *vdom.Node) error {
	data := encode(node)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.snapshots[id] = data
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.snapshots, id)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.snapshots = nil
	return nil
}

// Count returns the number of stored snapshots.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}
