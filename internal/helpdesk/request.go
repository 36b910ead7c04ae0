// ABOUTME: HelpRequest model and status lifecycle for supervisor escalations
// ABOUTME: Statuses serialize as lowercase strings; unknown strings are rejected

package helpdesk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/2389/frontdesk-gateway/internal/store"
)

// Status is the lifecycle state of a help request.
//
// Transitions: pending -> resolved or pending -> timeout. Both targets are
// terminal; a request never moves backwards or between terminal states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusTimeout  Status = "timeout"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusResolved, StatusTimeout:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown status strings instead of silently
// defaulting.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := Status(raw)
	if !parsed.Valid() {
		return fmt.Errorf("unknown help request status %q", raw)
	}
	*s = parsed
	return nil
}

// HelpRequest is an escalation record created when the agent cannot
// confidently answer a customer.
//
// Invariants: resolved_at is set iff status is resolved; timeout_at is fixed
// at creation (created_at + timeout duration) and never changes. Requests are
// never deleted - the collection is the audit trail.
type HelpRequest struct {
	ID            string `json:"request_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name,omitempty"`
	Question      string `json:"question"`
	Context       string `json:"context,omitempty"`

	Status Status `json:"status"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	TimeoutAt  time.Time  `json:"timeout_at"`

	// Supervisor response
	SupervisorAnswer string `json:"supervisor_answer,omitempty"`
	SupervisorID     string `json:"supervisor_id,omitempty"`

	// Follow-up tracking
	CustomerNotified   bool       `json:"customer_notified"`
	NotificationSentAt *time.Time `json:"notification_sent_at,omitempty"`
}

// Document converts the request to its persisted form. Timestamps become
// RFC 3339 strings and the status its lowercase wire string.
func (r *HelpRequest) Document() (store.Document, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding help request: %w", err)
	}
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding help request document: %w", err)
	}
	return doc, nil
}

// RequestFromDocument reconstructs a request from its persisted form.
func RequestFromDocument(doc store.Document) (*HelpRequest, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding help request document: %w", err)
	}
	var r HelpRequest
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding help request: %w", err)
	}
	return &r, nil
}
