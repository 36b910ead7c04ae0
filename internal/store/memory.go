// ABOUTME: In-memory Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store implementation for testing.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
	}
}

// Set writes the full document, replacing any existing one.
func (m *MemoryStore) Set(ctx context.Context, collection, id string, doc Document) error {
	copied, err := copyDocument(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	m.collections[collection][id] = copied
	return nil
}

// Get returns a copy of the document or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc)
}

// Update merges the given fields into an existing document.
func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) error {
	copied, err := copyDocument(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range copied {
		doc[k] = v
	}
	return nil
}

// ListAll returns copies of every document in the collection, keyed by ID.
func (m *MemoryStore) ListAll(ctx context.Context, collection string) (map[string]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make(map[string]Document, len(m.collections[collection]))
	for id, doc := range m.collections[collection] {
		copied, err := copyDocument(doc)
		if err != nil {
			return nil, err
		}
		docs[id] = copied
	}
	return docs, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// copyDocument deep-copies a document through a JSON round trip so callers
// can't mutate stored state, and so values match what SQLite would return.
func copyDocument(doc Document) (Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	var copied Document
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return copied, nil
}
