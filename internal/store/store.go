// ABOUTME: Store interface and collection names for frontdesk-gateway persistence
// ABOUTME: Defines a generic document store keyed by collection and ID

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

// Collection names used by the engines.
const (
	CollectionHelpRequests = "help_requests"
	CollectionKnowledge    = "knowledge_base"
	CollectionCustomers    = "customers"
)

// Document is a schemaless record persisted under a collection and ID.
// Values survive a JSON round trip, so numbers come back as float64.
type Document = map[string]any

// Store defines the interface for document persistence.
//
// Documents are mutated via read-modify-write with last-writer-wins
// semantics; there is no optimistic concurrency token.
type Store interface {
	// Set writes the full document, replacing any existing one.
	Set(ctx context.Context, collection, id string, doc Document) error

	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Update merges the given fields into an existing document.
	// Returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, collection, id string, fields Document) error

	// ListAll returns every document in the collection, keyed by ID.
	ListAll(ctx context.Context, collection string) (map[string]Document, error)

	// Close releases any resources held by the store
	Close() error
}
