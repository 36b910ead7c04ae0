// ABOUTME: Knowledge base endpoints - list, search, add, stats
// ABOUTME: Search limits are clamped to keep responses bounded

package api

import (
	"net/http"
	"strconv"

	"github.com/2389/frontdesk-gateway/internal/knowledge"
)

// maxSearchLimit caps the ?limit= query parameter.
const maxSearchLimit = 20

// CreateEntryBody is the JSON request body for POST /api/knowledge.
type CreateEntryBody struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// ListEntriesResponse is the JSON response for knowledge listing and search.
type ListEntriesResponse struct {
	Entries []*knowledge.Entry `json:"entries"`
	Count   int                `json:"count"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var body CreateEntryBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.knowledge.AddEntry(r.Context(), knowledge.EntryParams{
		Question: body.Question,
		Answer:   body.Answer,
		Category: body.Category,
		Keywords: body.Keywords,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.knowledge.ListAll(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ListEntriesResponse{Entries: entries, Count: len(entries)})
}

func (s *Server) handleSearchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	limit := knowledge.DefaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxSearchLimit)
	}

	entries, err := s.knowledge.Search(r.Context(), query, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ListEntriesResponse{Entries: entries, Count: len(entries)})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.knowledge.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleKnowledgeSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.knowledge.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}
