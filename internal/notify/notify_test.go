// ABOUTME: Tests for the notification dispatcher - formatting and retry
// ABOUTME: A flaky sink eventually succeeds; a dead sink surfaces an error

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/frontdesk-gateway/internal/helpdesk"
)

// recordingSink captures delivered messages and fails the first failUntil
// attempts.
type recordingSink struct {
	messages  []*Message
	attempts  int
	failUntil int
}

func (s *recordingSink) Deliver(ctx context.Context, msg *Message) error {
	s.attempts++
	if s.attempts <= s.failUntil {
		return errors.New("transport down")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func testRequest() *helpdesk.HelpRequest {
	return &helpdesk.HelpRequest{
		ID:            "req-1",
		CustomerPhone: "+15551234567",
		CustomerName:  "Maria",
		Question:      "Do you do balayage?",
		Context:       "user: Do you do balayage?",
		Status:        helpdesk.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestNotifySupervisor(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, 0, nil)

	err := d.NotifySupervisor(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, sink.messages, 1)

	msg := sink.messages[0]
	assert.Equal(t, KindSupervisor, msg.Kind)
	assert.Equal(t, "supervisor", msg.Recipient)
	assert.Contains(t, msg.Body, "Maria")
	assert.Contains(t, msg.Body, "+15551234567")
	assert.Contains(t, msg.Body, "Do you do balayage?")
	assert.Contains(t, msg.Body, "req-1")
}

func TestNotifySupervisor_FallsBackToPhone(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, 0, nil)

	req := testRequest()
	req.CustomerName = ""
	req.Context = ""

	err := d.NotifySupervisor(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, sink.messages, 1)

	assert.Contains(t, sink.messages[0].Body, "Customer: +15551234567")
	assert.Contains(t, sink.messages[0].Body, "No additional context")
}

func TestNotifyCustomer(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, 0, nil)

	err := d.NotifyCustomer(context.Background(), "+15551234567", "Do you do balayage?", "Yes, from $150.")
	require.NoError(t, err)
	require.Len(t, sink.messages, 1)

	msg := sink.messages[0]
	assert.Equal(t, KindCustomer, msg.Kind)
	assert.Equal(t, "+15551234567", msg.Recipient)
	assert.Contains(t, msg.Body, "Your question: Do you do balayage?")
	assert.Contains(t, msg.Body, "Answer: Yes, from $150.")
}

func TestDeliver_RetriesUntilSuccess(t *testing.T) {
	sink := &recordingSink{failUntil: 2}
	d := NewDispatcher(sink, 3, nil)

	err := d.NotifyCustomer(context.Background(), "+15551234567", "q", "a")
	require.NoError(t, err)
	assert.Equal(t, 3, sink.attempts)
	assert.Len(t, sink.messages, 1)
}

func TestDeliver_GivesUpAfterRetries(t *testing.T) {
	sink := &recordingSink{failUntil: 100}
	d := NewDispatcher(sink, 2, nil)

	err := d.NotifyCustomer(context.Background(), "+15551234567", "q", "a")
	require.Error(t, err)
	// Initial attempt plus two retries
	assert.Equal(t, 3, sink.attempts)
	assert.Empty(t, sink.messages)
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(nil)
	err := sink.Deliver(context.Background(), &Message{
		Kind:      KindCustomer,
		Recipient: "+15551234567",
		Body:      "hello",
	})
	assert.NoError(t, err)
}
