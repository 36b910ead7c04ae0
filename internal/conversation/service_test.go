// ABOUTME: Tests for the conversation orchestrator - answer vs escalate paths
// ABOUTME: Uses a scripted completion client, no network involved

package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/frontdesk-gateway/internal/completion"
	"github.com/2389/frontdesk-gateway/internal/helpdesk"
	"github.com/2389/frontdesk-gateway/internal/knowledge"
	"github.com/2389/frontdesk-gateway/internal/store"
)

// scriptedClient returns canned replies in order, then repeats the last one.
// It records the messages of each call.
type scriptedClient struct {
	replies  []string
	fail     bool
	calls    [][]completion.Message
	keywords []string
}

func (c *scriptedClient) Complete(ctx context.Context, messages []completion.Message, temperature float64, maxTokens int) (string, error) {
	c.calls = append(c.calls, messages)
	if c.fail {
		return "", completion.ErrUnavailable
	}
	idx := len(c.calls) - 1
	if idx >= len(c.replies) {
		idx = len(c.replies) - 1
	}
	return c.replies[idx], nil
}

func (c *scriptedClient) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	if c.keywords == nil {
		return nil, errors.New("no keywords scripted")
	}
	return c.keywords, nil
}

// noopNotifier satisfies helpdesk.Notifier without side effects.
type noopNotifier struct{}

func (noopNotifier) NotifySupervisor(ctx context.Context, req *helpdesk.HelpRequest) error {
	return nil
}

func (noopNotifier) NotifyCustomer(ctx context.Context, phone, question, answer string) error {
	return nil
}

func newTestOrchestrator(t *testing.T, client *scriptedClient) (*Service, *helpdesk.Engine, *knowledge.Service, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	kn := knowledge.NewService(s, client, nil, nil)
	engine := helpdesk.NewEngine(s, noopNotifier{}, kn, 0, nil)
	return NewService(kn, client, engine, s, nil), engine, kn, s
}

func TestProcessMessage_Answers(t *testing.T) {
	client := &scriptedClient{replies: []string{"We open at 9 AM on weekdays."}}
	svc, engine, _, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	reply, err := svc.ProcessMessage(ctx, "session-1", "When do you open?")
	require.NoError(t, err)
	assert.Equal(t, "We open at 9 AM on weekdays.", reply)

	// No escalation happened
	requests, err := engine.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, requests)

	// The call carried a system prompt plus the user turn
	require.Len(t, client.calls, 1)
	messages := client.calls[0]
	require.NotEmpty(t, messages)
	assert.Equal(t, completion.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, SentinelNeedsHelp)
	assert.Equal(t, "When do you open?", messages[len(messages)-1].Content)
}

func TestProcessMessage_HistoryAccumulates(t *testing.T) {
	client := &scriptedClient{replies: []string{"First answer.", "Second answer."}}
	svc, _, _, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, "session-1", "First question?")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, "session-1", "Second question?")
	require.NoError(t, err)

	// Second call sees system + user + assistant + user
	require.Len(t, client.calls, 2)
	second := client.calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, completion.RoleUser, second[1].Role)
	assert.Equal(t, completion.RoleAssistant, second[2].Role)
	assert.Equal(t, "Second question?", second[3].Content)
}

func TestProcessMessage_SessionsAreIsolated(t *testing.T) {
	client := &scriptedClient{replies: []string{"Answer."}}
	svc, _, _, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	_, err := svc.ProcessMessage(ctx, "session-1", "Question one?")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(ctx, "session-2", "Question two?")
	require.NoError(t, err)

	// The second session's call has no history from the first
	second := client.calls[1]
	require.Len(t, second, 2)
	assert.Equal(t, "Question two?", second[1].Content)
}

func TestProcessMessage_SentinelEscalates(t *testing.T) {
	client := &scriptedClient{replies: []string{"NEEDS_HELP"}}
	svc, engine, _, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	require.NoError(t, svc.SetCustomer(ctx, "session-1", "+15551234567", "Maria"))

	reply, err := svc.ProcessMessage(ctx, "session-1", "Is Jessica available Tuesday?")
	require.NoError(t, err)
	assert.Equal(t, EscalationMessage, reply)

	requests, err := engine.List(ctx, helpdesk.StatusPending)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	req := requests[0]
	assert.Equal(t, "+15551234567", req.CustomerPhone)
	assert.Equal(t, "Maria", req.CustomerName)
	assert.Equal(t, "Is Jessica available Tuesday?", req.Question)
	assert.Contains(t, req.Context, "user: Is Jessica available Tuesday?")
}

func TestProcessMessage_SentinelInsideLongerReply(t *testing.T) {
	client := &scriptedClient{replies: []string{"Hmm, NEEDS_HELP on that one."}}
	svc, engine, _, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	reply, err := svc.ProcessMessage(ctx, "session-1", "Is Jessica available?")
	require.NoError(t, err)
	assert.Equal(t, EscalationMessage, reply)

	requests, err := engine.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestProcessMessage_UnknownCallerEscalates(t *testing.T) {
	client := &scriptedClient{replies: []string{"NEEDS_HELP"}}
	svc, engine, _, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	// No SetCustomer call - phone falls back to "unknown"
	reply, err := svc.ProcessMessage(ctx, "session-1", "Is Jessica available?")
	require.NoError(t, err)
	assert.Equal(t, EscalationMessage, reply)

	requests, err := engine.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "unknown", requests[0].CustomerPhone)
}

func TestProcessMessage_CompletionFailureEscalates(t *testing.T) {
	client := &scriptedClient{fail: true}
	svc, engine, _, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	reply, err := svc.ProcessMessage(ctx, "session-1", "When do you open?")
	require.NoError(t, err)
	assert.Equal(t, EscalationMessage, reply)

	requests, err := engine.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestProcessMessage_KnowledgeInformsPromptAndUsage(t *testing.T) {
	client := &scriptedClient{replies: []string{"Balayage starts at $150."}}
	svc, _, kn, _ := newTestOrchestrator(t, client)
	ctx := context.Background()

	entry, err := kn.AddEntry(ctx, knowledge.EntryParams{
		Question: "Do you do balayage?",
		Answer:   "Yes, from $150.",
		Keywords: []string{"balayage"},
	})
	require.NoError(t, err)

	reply, err := svc.ProcessMessage(ctx, "session-1", "how much is balayage?")
	require.NoError(t, err)
	assert.Equal(t, "Balayage starts at $150.", reply)

	// The matched entry appears in the system prompt
	require.Len(t, client.calls, 1)
	assert.Contains(t, client.calls[0][0].Content, "Yes, from $150.")

	// And its usage counter was bumped
	got, err := kn.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TimesUsed)
}

func TestProcessMessage_EmptyMessage(t *testing.T) {
	client := &scriptedClient{replies: []string{"hi"}}
	svc, _, _, _ := newTestOrchestrator(t, client)

	_, err := svc.ProcessMessage(context.Background(), "session-1", "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetCustomer_InvalidPhone(t *testing.T) {
	client := &scriptedClient{replies: []string{"hi"}}
	svc, _, _, _ := newTestOrchestrator(t, client)

	err := svc.SetCustomer(context.Background(), "session-1", "not-a-phone", "Maria")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetCustomer_TracksCalls(t *testing.T) {
	client := &scriptedClient{replies: []string{"hi"}}
	svc, _, _, s := newTestOrchestrator(t, client)
	ctx := context.Background()

	require.NoError(t, svc.SetCustomer(ctx, "session-1", "+15551234567", "Maria"))
	require.NoError(t, svc.SetCustomer(ctx, "session-2", "+15551234567", "Maria"))

	doc, err := s.Get(ctx, store.CollectionCustomers, sanitizePhone("+15551234567"))
	require.NoError(t, err)

	customer, err := CustomerFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, customer.TotalCalls)
	assert.Equal(t, "Maria", customer.Name)
	require.NotNil(t, customer.LastCallAt)
}

func TestValidPhone(t *testing.T) {
	assert.True(t, validPhone("+15551234567"))
	assert.True(t, validPhone("15551234567"))
	assert.True(t, validPhone("+1 555 123-4567"))
	assert.False(t, validPhone(""))
	assert.False(t, validPhone("not-a-phone"))
	assert.False(t, validPhone("+0123"))
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, "_15551234567", sanitizePhone("+1 555-123-4567"))
	assert.Equal(t, "15551234567", sanitizePhone("15551234567"))
}

func TestRenderHistory(t *testing.T) {
	history := []completion.Message{
		{Role: completion.RoleUser, Content: "Do you do balayage?"},
		{Role: completion.RoleAssistant, Content: "Let me check."},
	}
	rendered := renderHistory(history)
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "user: Do you do balayage?", lines[0])
	assert.Equal(t, "assistant: Let me check.", lines[1])
}

func TestBuildSystemPrompt(t *testing.T) {
	empty := buildSystemPrompt(nil)
	assert.NotContains(t, empty, "LEARNED INFORMATION")

	withEntries := buildSystemPrompt([]*knowledge.Entry{
		{Question: "Do you do balayage?", Answer: "Yes, from $150."},
	})
	assert.Contains(t, withEntries, "LEARNED INFORMATION")
	assert.Contains(t, withEntries, "Q: Do you do balayage?")
	assert.Contains(t, withEntries, "A: Yes, from $150.")
}
