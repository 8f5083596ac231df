package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process RecordStore. It backs the default driver and
// the test doubles.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) Read(_ context.Context, collection string, out any) error {
	m.mu.RLock()
	doc, ok := m.docs[collection]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return json.Unmarshal(doc, out)
}

func (m *MemoryStore) Write(_ context.Context, collection string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[collection] = doc
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, collections ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range collections {
		delete(m.docs, name)
	}
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
