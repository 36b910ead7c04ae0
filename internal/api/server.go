// ABOUTME: HTTP server wiring the service layer to JSON endpoints
// ABOUTME: Thin glue - validation and status mapping, no business logic

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/2389/frontdesk-gateway/internal/conversation"
	"github.com/2389/frontdesk-gateway/internal/helpdesk"
	"github.com/2389/frontdesk-gateway/internal/knowledge"
	"github.com/2389/frontdesk-gateway/internal/store"
)

// Server exposes the helpdesk, knowledge, and conversation services over
// HTTP.
type Server struct {
	helpdesk     *helpdesk.Engine
	knowledge    *knowledge.Service
	conversation *conversation.Service
	logger       *slog.Logger
}

// NewServer creates an API server.
func NewServer(h *helpdesk.Engine, k *knowledge.Service, c *conversation.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		helpdesk:     h,
		knowledge:    k,
		conversation: c,
		logger:       logger.With("component", "api"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/help-requests", s.handleCreateHelpRequest)
	mux.HandleFunc("GET /api/help-requests", s.handleListHelpRequests)
	mux.HandleFunc("GET /api/help-requests/{id}", s.handleGetHelpRequest)
	mux.HandleFunc("POST /api/help-requests/check-timeouts", s.handleCheckTimeouts)

	mux.HandleFunc("POST /api/knowledge", s.handleCreateEntry)
	mux.HandleFunc("GET /api/knowledge", s.handleListEntries)
	mux.HandleFunc("GET /api/knowledge/search", s.handleSearchEntries)
	mux.HandleFunc("GET /api/knowledge/{id}", s.handleGetEntry)
	mux.HandleFunc("GET /api/knowledge/summary/stats", s.handleKnowledgeSummary)

	mux.HandleFunc("POST /api/supervisor/{id}/resolve", s.handleResolve)
	mux.HandleFunc("GET /api/supervisor/dashboard/stats", s.handleDashboardStats)

	mux.HandleFunc("POST /api/conversation/{session}/messages", s.handleConversationMessage)
	mux.HandleFunc("POST /api/conversation/{session}/customer", s.handleSetCustomer)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return mux
}

// writeJSON writes v as a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

// writeError writes a JSON error payload.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP statuses. Validation
// errors carry their message to the client; anything else gets a generic
// message with details in the log.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, helpdesk.ErrValidation),
		errors.Is(err, knowledge.ErrValidation),
		errors.Is(err, conversation.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service": "frontdesk-gateway",
		"status":  "running",
	})
}
