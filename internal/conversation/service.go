// ABOUTME: Conversation orchestrator - answers from knowledge or escalates
// ABOUTME: Per-session state with single-writer discipline on each history

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/2389/frontdesk-gateway/internal/completion"
	"github.com/2389/frontdesk-gateway/internal/helpdesk"
	"github.com/2389/frontdesk-gateway/internal/knowledge"
	"github.com/2389/frontdesk-gateway/internal/store"
)

// ErrValidation is returned when session input fails validation.
var ErrValidation = errors.New("invalid session input")

// completionTemperature keeps answers grounded rather than creative.
const completionTemperature = 0.3

// completionMaxTokens bounds reply length.
const completionMaxTokens = 500

// session is the per-conversation state. Each session's history has a
// single writer at a time, enforced by its mutex; concurrent turns on the
// same session serialize.
type session struct {
	mu            sync.Mutex
	id            string
	customerPhone string
	customerName  string
	history       []completion.Message
}

// Service runs the per-session conversation loop: consult the knowledge
// base and the completion capability, then answer directly or escalate to
// a human supervisor.
type Service struct {
	knowledge  *knowledge.Service
	completion completion.Client
	requests   *helpdesk.Engine
	store      store.Store
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService creates a conversation orchestrator.
func NewService(kn *knowledge.Service, client completion.Client, requests *helpdesk.Engine, s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		knowledge:  kn,
		completion: client,
		requests:   requests,
		store:      s,
		logger:     logger.With("component", "conversation"),
		sessions:   make(map[string]*session),
	}
}

// session returns the session for id, creating it if needed.
func (s *Service) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{id: id}
		s.sessions[id] = sess
	}
	return sess
}

// SetCustomer records the caller's identity on the session and upserts the
// customer tracking document. Tracking failures are logged, not returned -
// identity on the session is the primary effect.
func (s *Service) SetCustomer(ctx context.Context, sessionID, phone, name string) error {
	if !validPhone(phone) {
		return fmt.Errorf("%w: %q is not a valid phone number", ErrValidation, phone)
	}

	sess := s.session(sessionID)
	sess.mu.Lock()
	sess.customerPhone = phone
	sess.customerName = name
	sess.mu.Unlock()

	s.trackCustomer(ctx, phone, name)
	return nil
}

// trackCustomer bumps the caller's visit counter in the customers
// collection.
func (s *Service) trackCustomer(ctx context.Context, phone, name string) {
	key := sanitizePhone(phone)
	now := time.Now().UTC()

	doc, err := s.store.Get(ctx, store.CollectionCustomers, key)
	if errors.Is(err, store.ErrNotFound) {
		customer := &Customer{
			Phone:      phone,
			Name:       name,
			TotalCalls: 1,
			LastCallAt: &now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		newDoc, err := customer.Document()
		if err == nil {
			err = s.store.Set(ctx, store.CollectionCustomers, key, newDoc)
		}
		if err != nil {
			s.logger.Warn("customer tracking failed", "phone", phone, "error", err)
		}
		return
	}
	if err != nil {
		s.logger.Warn("customer lookup failed", "phone", phone, "error", err)
		return
	}

	existing, err := CustomerFromDocument(doc)
	if err != nil {
		s.logger.Warn("malformed customer record", "phone", phone, "error", err)
		return
	}

	updates := store.Document{
		"total_calls":  existing.TotalCalls + 1,
		"last_call_at": now.Format(time.RFC3339Nano),
		"updated_at":   now.Format(time.RFC3339Nano),
	}
	if name != "" {
		updates["name"] = name
	}
	if err := s.store.Update(ctx, store.CollectionCustomers, key, updates); err != nil {
		s.logger.Warn("customer tracking failed", "phone", phone, "error", err)
	}
}

// ProcessMessage handles one customer turn: search the knowledge base,
// ask the completion capability, and either answer or escalate.
//
// A completion failure is treated the same as the sentinel - when the
// system cannot judge its own confidence, the safe path is human handoff.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: message text is required", ErrValidation)
	}

	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.history = append(sess.history, completion.Message{
		Role:    completion.RoleUser,
		Content: text,
	})

	hits, err := s.knowledge.Search(ctx, text, knowledge.DefaultSearchLimit)
	if err != nil {
		s.logger.Warn("knowledge search failed", "session_id", sessionID, "error", err)
		hits = nil
	}

	messages := make([]completion.Message, 0, len(sess.history)+1)
	messages = append(messages, completion.Message{
		Role:    completion.RoleSystem,
		Content: buildSystemPrompt(hits),
	})
	messages = append(messages, sess.history...)

	reply, err := s.completion.Complete(ctx, messages, completionTemperature, completionMaxTokens)
	if err != nil {
		s.logger.Warn("completion failed, escalating",
			"session_id", sessionID,
			"error", err)
		return s.escalate(ctx, sess, text), nil
	}

	if strings.Contains(reply, SentinelNeedsHelp) {
		s.logger.Info("agent needs help, escalating",
			"session_id", sessionID,
			"question", text)
		return s.escalate(ctx, sess, text), nil
	}

	sess.history = append(sess.history, completion.Message{
		Role:    completion.RoleAssistant,
		Content: reply,
	})

	// The entries that informed the answer count as used.
	for _, hit := range hits {
		s.knowledge.IncrementUsage(ctx, hit.ID)
	}

	return reply, nil
}

// escalate creates a help request carrying the session's history as context
// and returns the message to speak to the customer. The caller holds the
// session lock.
func (s *Service) escalate(ctx context.Context, sess *session, question string) string {
	phone := sess.customerPhone
	if phone == "" {
		phone = "unknown"
	}

	_, err := s.requests.Create(ctx, helpdesk.CreateParams{
		CustomerPhone: phone,
		CustomerName:  sess.customerName,
		Question:      question,
		Context:       renderHistory(sess.history),
	})
	if err != nil {
		s.logger.Error("escalation failed",
			"session_id", sess.id,
			"error", err)
		return EscalationFailedMessage
	}

	return EscalationMessage
}

// renderHistory flattens the turn history into the free-form context
// snapshot stored on the help request.
func renderHistory(history []completion.Message) string {
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
