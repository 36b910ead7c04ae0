// ABOUTME: HTTP endpoint tests over the full service stack
// ABOUTME: Memory store plus scripted completion, exercised through httptest

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/frontdesk-gateway/internal/completion"
	"github.com/2389/frontdesk-gateway/internal/conversation"
	"github.com/2389/frontdesk-gateway/internal/helpdesk"
	"github.com/2389/frontdesk-gateway/internal/knowledge"
	"github.com/2389/frontdesk-gateway/internal/notify"
	"github.com/2389/frontdesk-gateway/internal/store"
)

// cannedClient is a completion backend with a fixed reply.
type cannedClient struct {
	reply string
}

func (c *cannedClient) Complete(ctx context.Context, messages []completion.Message, temperature float64, maxTokens int) (string, error) {
	return c.reply, nil
}

func (c *cannedClient) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	return []string{"keyword"}, nil
}

func newTestServer(t *testing.T, reply string) (*httptest.Server, *helpdesk.Engine, *knowledge.Service) {
	t.Helper()
	s := store.NewMemoryStore()
	client := &cannedClient{reply: reply}
	dispatcher := notify.NewDispatcher(notify.NewLogSink(nil), 0, nil)
	kn := knowledge.NewService(s, client, nil, nil)
	engine := helpdesk.NewEngine(s, dispatcher, kn, 0, nil)
	conv := conversation.NewService(kn, client, engine, s, nil)

	server := httptest.NewServer(NewServer(engine, kn, conv, nil).Handler())
	t.Cleanup(server.Close)
	return server, engine, kn
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthAndRoot(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	resp, body := doJSON(t, http.MethodGet, server.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "frontdesk-gateway", body["service"])
}

func TestHelpRequestLifecycle(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	// Create
	resp, created := doJSON(t, http.MethodPost, server.URL+"/api/help-requests",
		`{"customer_phone": "+15551234567", "customer_name": "Maria", "question": "Do you do balayage?"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID := created["request_id"].(string)
	assert.Equal(t, "pending", created["status"])

	// Get
	resp, fetched := doJSON(t, http.MethodGet, server.URL+"/api/help-requests/"+requestID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Do you do balayage?", fetched["question"])

	// List with filter
	resp, listed := doJSON(t, http.MethodGet, server.URL+"/api/help-requests?status=pending", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), listed["count"])

	// Resolve
	resp, resolved := doJSON(t, http.MethodPost, server.URL+"/api/supervisor/"+requestID+"/resolve",
		`{"answer": "Yes, from $150."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "resolved", resolved["status"])
	assert.Equal(t, helpdesk.DefaultSupervisorID, resolved["supervisor_id"])

	// Resolution fed the knowledge base
	resp, entries := doJSON(t, http.MethodGet, server.URL+"/api/knowledge", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), entries["count"])
}

func TestCreateHelpRequest_Validation(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/help-requests",
		`{"question": "Do you do balayage?"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "customer_phone")

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/help-requests", `{broken`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid JSON body", body["error"])
}

func TestGetHelpRequest_NotFound(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/help-requests/no-such-id", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error"])
}

func TestListHelpRequests_UnknownStatus(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/help-requests?status=escalated", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "escalated")
}

func TestCheckTimeouts(t *testing.T) {
	// Engine built with zero timeout in newTestServer: negative deadline
	// needs a dedicated engine, so use a fresh stack with -1s.
	s := store.NewMemoryStore()
	client := &cannedClient{reply: "hi"}
	dispatcher := notify.NewDispatcher(notify.NewLogSink(nil), 0, nil)
	kn := knowledge.NewService(s, client, nil, nil)
	engine := helpdesk.NewEngine(s, dispatcher, kn, -1, nil)
	conv := conversation.NewService(kn, client, engine, s, nil)
	server := httptest.NewServer(NewServer(engine, kn, conv, nil).Handler())
	t.Cleanup(server.Close)

	_, err := engine.Create(context.Background(), helpdesk.CreateParams{
		CustomerPhone: "+15551234567",
		Question:      "Do you do balayage?",
	})
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/help-requests/check-timeouts", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["timed_out"])
}

func TestKnowledgeEndpoints(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	// Create
	resp, created := doJSON(t, http.MethodPost, server.URL+"/api/knowledge",
		`{"question": "How much is a haircut?", "answer": "From $45.", "category": "pricing", "keywords": ["haircut"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entryID := created["entry_id"].(string)
	assert.Equal(t, "manual", created["source"])

	// Get
	resp, fetched := doJSON(t, http.MethodGet, server.URL+"/api/knowledge/"+entryID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "From $45.", fetched["answer"])

	// Search
	resp, results := doJSON(t, http.MethodGet, server.URL+"/api/knowledge/search?query=haircut", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), results["count"])

	// Summary
	resp, summary := doJSON(t, http.MethodGet, server.URL+"/api/knowledge/summary/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), summary["total_entries"])
}

func TestSearch_Validation(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/knowledge/search", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "query is required", body["error"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/knowledge/search?query=x&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "limit")
}

func TestDashboardStats(t *testing.T) {
	server, engine, _ := newTestServer(t, "hi")
	ctx := context.Background()

	first, err := engine.Create(ctx, helpdesk.CreateParams{
		CustomerPhone: "+15551234567",
		Question:      "Do you do balayage?",
	})
	require.NoError(t, err)
	_, err = engine.Create(ctx, helpdesk.CreateParams{
		CustomerPhone: "+15557654321",
		Question:      "Are you open Sundays?",
	})
	require.NoError(t, err)
	_, err = engine.Resolve(ctx, first.ID, "Yes, from $150.", "")
	require.NoError(t, err)

	resp, stats := doJSON(t, http.MethodGet, server.URL+"/api/supervisor/dashboard/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), stats["pending"])
	assert.Equal(t, float64(1), stats["resolved"])
	assert.Equal(t, float64(0), stats["timed_out"])
	assert.Equal(t, float64(2), stats["total"])
	// The resolution was learned
	assert.Equal(t, float64(1), stats["learned_answers"])
}

func TestConversationEndpoints(t *testing.T) {
	server, _, _ := newTestServer(t, "We open at 9 AM.")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/conversation/session-1/customer",
		`{"phone": "+15551234567", "name": "Maria"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/conversation/session-1/messages",
		`{"message": "When do you open?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "session-1", body["session_id"])
	assert.Equal(t, "We open at 9 AM.", body["reply"])
}

func TestConversationEscalation(t *testing.T) {
	server, engine, _ := newTestServer(t, "NEEDS_HELP")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/conversation/session-1/messages",
		`{"message": "Is Jessica available Tuesday?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["reply"], "supervisor")

	requests, err := engine.List(context.Background(), helpdesk.StatusPending)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "Is Jessica available Tuesday?", requests[0].Question)
}

func TestConversation_Validation(t *testing.T) {
	server, _, _ := newTestServer(t, "hi")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/conversation/session-1/messages",
		`{"message": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "message text is required")

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/conversation/session-1/customer",
		`{"phone": "not-a-phone"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, fmt.Sprint(body["error"]), "phone")
}
