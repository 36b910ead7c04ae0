// ABOUTME: KnowledgeEntry model - a learned Q&A pair with usage tracking
// ABOUTME: Entries persist as JSON documents with RFC 3339 timestamps

package knowledge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/2389/frontdesk-gateway/internal/store"
)

// Entry source tags.
const (
	SourceManual     = "manual"
	SourceSupervisor = "supervisor"
)

// Entry is a learned answer the agent can retrieve to avoid re-escalating.
//
// Invariants: TimesUsed is monotonically non-decreasing and LastUsedAt is
// set only when the counter increments. Entries are never deleted.
type Entry struct {
	ID       string `json:"entry_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`

	// Categorization for retrieval
	Category string   `json:"category,omitempty"`
	Keywords []string `json:"keywords"`

	// Provenance
	Source          string  `json:"source"`
	SourceRequestID string  `json:"source_request_id,omitempty"`
	Confidence      float64 `json:"confidence"`

	// Usage tracking
	TimesUsed  int        `json:"times_used"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document converts the entry to its persisted form.
func (e *Entry) Document() (store.Document, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding knowledge entry: %w", err)
	}
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding knowledge entry document: %w", err)
	}
	return doc, nil
}

// EntryFromDocument reconstructs an entry from its persisted form.
func EntryFromDocument(doc store.Document) (*Entry, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding knowledge entry document: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding knowledge entry: %w", err)
	}
	return &e, nil
}

// recency is last use when the entry has been used, creation time otherwise.
func (e *Entry) recency() time.Time {
	if e.LastUsedAt != nil {
		return *e.LastUsedAt
	}
	return e.CreatedAt
}
