// ABOUTME: Help request and supervisor endpoints
// ABOUTME: Create, list, fetch, resolve, and timeout-sweep over HTTP

package api

import (
	"net/http"

	"github.com/2389/frontdesk-gateway/internal/helpdesk"
)

// CreateHelpRequestBody is the JSON request body for POST /api/help-requests.
type CreateHelpRequestBody struct {
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name,omitempty"`
	Question      string `json:"question"`
	Context       string `json:"context,omitempty"`
}

// ResolveBody is the JSON request body for POST /api/supervisor/{id}/resolve.
type ResolveBody struct {
	Answer       string `json:"answer"`
	SupervisorID string `json:"supervisor_id,omitempty"`
}

// ListHelpRequestsResponse is the JSON response for GET /api/help-requests.
type ListHelpRequestsResponse struct {
	Requests []*helpdesk.HelpRequest `json:"requests"`
	Count    int                     `json:"count"`
}

// CheckTimeoutsResponse is the JSON response for the timeout sweep endpoint.
type CheckTimeoutsResponse struct {
	TimedOut int `json:"timed_out"`
}

// DashboardStats is the JSON response for GET /api/supervisor/dashboard/stats.
type DashboardStats struct {
	Pending        int `json:"pending"`
	Resolved       int `json:"resolved"`
	TimedOut       int `json:"timed_out"`
	Total          int `json:"total"`
	LearnedAnswers int `json:"learned_answers"`
}

func (s *Server) handleCreateHelpRequest(w http.ResponseWriter, r *http.Request) {
	var body CreateHelpRequestBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := s.helpdesk.Create(r.Context(), helpdesk.CreateParams{
		CustomerPhone: body.CustomerPhone,
		CustomerName:  body.CustomerName,
		Question:      body.Question,
		Context:       body.Context,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListHelpRequests(w http.ResponseWriter, r *http.Request) {
	filter := helpdesk.Status(r.URL.Query().Get("status"))

	requests, err := s.helpdesk.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ListHelpRequestsResponse{
		Requests: requests,
		Count:    len(requests),
	})
}

func (s *Server) handleGetHelpRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.helpdesk.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleCheckTimeouts(w http.ResponseWriter, r *http.Request) {
	count, err := s.helpdesk.SweepTimeouts(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CheckTimeoutsResponse{TimedOut: count})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var body ResolveBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := s.helpdesk.Resolve(r.Context(), r.PathValue("id"), body.Answer, body.SupervisorID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	requests, err := s.helpdesk.List(r.Context(), "")
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	stats := DashboardStats{Total: len(requests)}
	for _, req := range requests {
		switch req.Status {
		case helpdesk.StatusPending:
			stats.Pending++
		case helpdesk.StatusResolved:
			stats.Resolved++
		case helpdesk.StatusTimeout:
			stats.TimedOut++
		}
	}

	summary, err := s.knowledge.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	stats.LearnedAnswers = summary.TotalEntries

	s.writeJSON(w, http.StatusOK, stats)
}
