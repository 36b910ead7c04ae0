// ABOUTME: Customer model and call tracking in the customers collection
// ABOUTME: Documents are keyed by sanitized phone number

package conversation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/2389/frontdesk-gateway/internal/store"
)

// phonePattern accepts E.164-ish numbers after spaces and dashes are removed.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// Customer tracks a caller across sessions.
type Customer struct {
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`

	TotalCalls int        `json:"total_calls"`
	LastCallAt *time.Time `json:"last_call_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document converts the customer to its persisted form.
func (c *Customer) Document() (store.Document, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding customer: %w", err)
	}
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding customer document: %w", err)
	}
	return doc, nil
}

// CustomerFromDocument reconstructs a customer from its persisted form.
func CustomerFromDocument(doc store.Document) (*Customer, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding customer document: %w", err)
	}
	var c Customer
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding customer: %w", err)
	}
	return &c, nil
}

// validPhone reports whether phone looks like a real phone number.
func validPhone(phone string) bool {
	stripped := strings.ReplaceAll(strings.ReplaceAll(phone, " ", ""), "-", "")
	return phonePattern.MatchString(stripped)
}

// sanitizePhone turns a phone number into a document key.
func sanitizePhone(phone string) string {
	key := strings.ReplaceAll(phone, "+", "_")
	key = strings.ReplaceAll(key, " ", "")
	return strings.ReplaceAll(key, "-", "")
}
