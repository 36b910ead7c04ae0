// ABOUTME: Conversation endpoints - text-turn channel and customer identity
// ABOUTME: Stands in for the external voice transport

package api

import (
	"net/http"
)

// MessageBody is the JSON request body for a conversation turn.
type MessageBody struct {
	Message string `json:"message"`
}

// MessageResponse is the JSON response for a conversation turn.
type MessageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// SetCustomerBody is the JSON request body for setting session identity.
type SetCustomerBody struct {
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
}

func (s *Server) handleConversationMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := r.PathValue("session")
	reply, err := s.conversation.ProcessMessage(r.Context(), sessionID, body.Message)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MessageResponse{
		SessionID: sessionID,
		Reply:     reply,
	})
}

func (s *Server) handleSetCustomer(w http.ResponseWriter, r *http.Request) {
	var body SetCustomerBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := r.PathValue("session")
	if err := s.conversation.SetCustomer(r.Context(), sessionID, body.Phone, body.Name); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"status":     "ok",
	})
}
