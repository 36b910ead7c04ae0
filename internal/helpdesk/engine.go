// ABOUTME: Help request lifecycle engine - create, resolve, timeout
// ABOUTME: Orchestrates notification and knowledge ingestion on resolution

package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/frontdesk-gateway/internal/store"
)

// ErrValidation is returned when request input fails validation.
var ErrValidation = errors.New("invalid help request")

// DefaultSupervisorID is assigned when a resolution names no supervisor.
const DefaultSupervisorID = "supervisor_1"

// Notifier defines what the engine needs from the notification dispatcher.
type Notifier interface {
	NotifySupervisor(ctx context.Context, req *HelpRequest) error
	NotifyCustomer(ctx context.Context, phone, question, answer string) error
}

// KnowledgeWriter defines what the engine needs from the knowledge engine.
type KnowledgeWriter interface {
	AddFromResolvedRequest(ctx context.Context, requestID, question, answer string) error
}

// Engine owns the help request state machine.
//
// The primary effect of each operation is the store write; notification and
// knowledge ingestion are independent post-actions whose failure is logged
// and never unwinds a committed transition.
type Engine struct {
	store     store.Store
	notifier  Notifier
	knowledge KnowledgeWriter
	timeout   time.Duration
	logger    *slog.Logger
}

// NewEngine creates a help request engine. timeout is how long a request
// stays pending before the sweep may expire it.
func NewEngine(s store.Store, notifier Notifier, knowledge KnowledgeWriter, timeout time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     s,
		notifier:  notifier,
		knowledge: knowledge,
		timeout:   timeout,
		logger:    logger.With("component", "helpdesk"),
	}
}

// CreateParams is the input for Create.
type CreateParams struct {
	CustomerPhone string
	CustomerName  string
	Question      string
	Context       string
}

// Create persists a new pending request and notifies the supervisor.
// Notification failure is logged, not fatal - the request still exists.
func (e *Engine) Create(ctx context.Context, params CreateParams) (*HelpRequest, error) {
	if strings.TrimSpace(params.CustomerPhone) == "" {
		return nil, fmt.Errorf("%w: customer_phone is required", ErrValidation)
	}
	if strings.TrimSpace(params.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}

	now := time.Now().UTC()
	req := &HelpRequest{
		ID:            uuid.New().String(),
		CustomerPhone: params.CustomerPhone,
		CustomerName:  params.CustomerName,
		Question:      params.Question,
		Context:       params.Context,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		TimeoutAt:     now.Add(e.timeout),
	}

	doc, err := req.Document()
	if err != nil {
		return nil, err
	}
	if err := e.store.Set(ctx, store.CollectionHelpRequests, req.ID, doc); err != nil {
		return nil, fmt.Errorf("saving help request: %w", err)
	}

	if err := e.notifier.NotifySupervisor(ctx, req); err != nil {
		e.logger.Warn("supervisor notification failed",
			"request_id", req.ID,
			"error", err)
	}

	e.logger.Info("help request created",
		"request_id", req.ID,
		"timeout_at", req.TimeoutAt)
	return req, nil
}

// Get returns a request by ID, or store.ErrNotFound.
func (e *Engine) Get(ctx context.Context, id string) (*HelpRequest, error) {
	doc, err := e.store.Get(ctx, store.CollectionHelpRequests, id)
	if err != nil {
		return nil, err
	}
	return RequestFromDocument(doc)
}

// List returns requests newest-created first, optionally filtered by status.
// An empty filter returns all requests.
func (e *Engine) List(ctx context.Context, filter Status) ([]*HelpRequest, error) {
	if filter != "" && !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown status filter %q", ErrValidation, string(filter))
	}

	docs, err := e.store.ListAll(ctx, store.CollectionHelpRequests)
	if err != nil {
		return nil, fmt.Errorf("listing help requests: %w", err)
	}

	requests := make([]*HelpRequest, 0, len(docs))
	for id, doc := range docs {
		req, err := RequestFromDocument(doc)
		if err != nil {
			e.logger.Warn("skipping malformed help request", "request_id", id, "error", err)
			continue
		}
		if filter != "" && req.Status != filter {
			continue
		}
		requests = append(requests, req)
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

// Resolve records the supervisor's answer on a pending request.
//
// Resolving a request that is no longer pending is a no-op returning the
// unchanged request, so double resolution is safe. After the primary update
// the engine runs two independent post-actions: customer notification (with
// its own follow-up write for the notified flag) and knowledge ingestion.
// Either may fail without affecting the resolution.
func (e *Engine) Resolve(ctx context.Context, id, answer, supervisorID string) (*HelpRequest, error) {
	req, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != StatusPending {
		e.logger.Warn("resolve on non-pending request is a no-op",
			"request_id", id,
			"status", string(req.Status))
		return req, nil
	}

	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: supervisor_answer is required", ErrValidation)
	}
	if supervisorID == "" {
		supervisorID = DefaultSupervisorID
	}

	now := time.Now().UTC()
	updates := store.Document{
		"status":            string(StatusResolved),
		"supervisor_answer": answer,
		"supervisor_id":     supervisorID,
		"resolved_at":       now.Format(time.RFC3339Nano),
		"updated_at":        now.Format(time.RFC3339Nano),
	}
	if err := e.store.Update(ctx, store.CollectionHelpRequests, id, updates); err != nil {
		return nil, fmt.Errorf("updating help request: %w", err)
	}

	req.Status = StatusResolved
	req.SupervisorAnswer = answer
	req.SupervisorID = supervisorID
	req.ResolvedAt = &now
	req.UpdatedAt = now

	// Post-action: tell the customer. A failed follow-up write leaves the
	// request resolved but unnotified, which is an accepted state.
	if err := e.notifier.NotifyCustomer(ctx, req.CustomerPhone, req.Question, answer); err != nil {
		e.logger.Warn("customer notification failed",
			"request_id", id,
			"error", err)
	} else {
		sentAt := time.Now().UTC()
		err := e.store.Update(ctx, store.CollectionHelpRequests, id, store.Document{
			"customer_notified":    true,
			"notification_sent_at": sentAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			e.logger.Warn("recording notification flag failed",
				"request_id", id,
				"error", err)
		} else {
			req.CustomerNotified = true
			req.NotificationSentAt = &sentAt
		}
	}

	// Post-action: learn the answer for next time.
	if err := e.knowledge.AddFromResolvedRequest(ctx, req.ID, req.Question, req.SupervisorAnswer); err != nil {
		e.logger.Warn("knowledge ingestion failed",
			"request_id", id,
			"error", err)
	}

	e.logger.Info("help request resolved",
		"request_id", id,
		"supervisor_id", supervisorID)
	return req, nil
}

// MarkTimeout transitions a request to timeout. It does not re-check the
// current status - callers select requests from the pending listing.
func (e *Engine) MarkTimeout(ctx context.Context, id string) bool {
	now := time.Now().UTC()
	err := e.store.Update(ctx, store.CollectionHelpRequests, id, store.Document{
		"status":     string(StatusTimeout),
		"updated_at": now.Format(time.RFC3339Nano),
	})
	if err != nil {
		e.logger.Warn("timeout transition failed", "request_id", id, "error", err)
		return false
	}

	e.logger.Info("help request timed out", "request_id", id)
	return true
}

// SweepTimeouts expires pending requests past their deadline and returns how
// many transitioned. Safe to run periodically and concurrently with live
// creation/resolution: it only acts on requests still pending when listed,
// and already-transitioned requests simply don't appear on the next sweep.
func (e *Engine) SweepTimeouts(ctx context.Context) (int, error) {
	pending, err := e.List(ctx, StatusPending)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	count := 0
	for _, req := range pending {
		if now.After(req.TimeoutAt) {
			if e.MarkTimeout(ctx, req.ID) {
				count++
			}
		}
	}

	if count > 0 {
		e.logger.Info("timeout sweep complete", "timed_out", count)
	}
	return count, nil
}
