package store

import (
	"context"
	"sync"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

// Compile-time assertion: *MemStore satisfies Repository.
var _ Repository = (*MemStore)(nil)

// MemStore implements Repository using a Go map. Thread-safe via sync.RWMutex.
// Documents are deep-copied on the way in and out.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]hoshin.Document
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]hoshin.Document)}
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// Upsert stores a copy of doc keyed by its id.
func (m *MemStore) Upsert(_ context.Context, doc hoshin.Document) error {
	if doc.ID == "" {
		return errMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc.Clone()
	return nil
}

// GetByID returns a copy of the document, or nil if not found.
func (m *MemStore) GetByID(_ context.Context, id string) (*hoshin.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	out := d.Clone()
	return &out, nil
}

// List returns copies of all documents.
func (m *MemStore) List(_ context.Context) ([]hoshin.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]hoshin.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d.Clone())
	}
	return out, nil
}

// Delete removes the document with the given id.
func (m *MemStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}
