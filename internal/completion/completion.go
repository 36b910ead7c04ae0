// ABOUTME: Text-completion capability contract shared by the engines
// ABOUTME: Defines Message, the Client interface, and the failure sentinel

package completion

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps any completion backend failure. Callers that cannot
// judge confidence without a completion treat this as "needs escalation"
// rather than an error to surface.
var ErrUnavailable = errors.New("completion unavailable")

// DefaultTimeout bounds a single completion call. Calls that exceed it fail;
// they are not retried.
const DefaultTimeout = 30 * time.Second

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation sent to the capability.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the text-completion capability: free-text generation over a
// conversation plus keyword extraction.
type Client interface {
	// Complete returns the model's reply to the conversation.
	// Failures wrap ErrUnavailable.
	Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)

	// ExtractKeywords derives up to 5 keywords from free text.
	ExtractKeywords(ctx context.Context, text string) ([]string, error)
}
