// ABOUTME: Notification dispatcher - formats messages and delivers via a sink
// ABOUTME: Format is fixed; the transport (log, SMS, webhook) is replaceable

package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/2389/frontdesk-gateway/internal/helpdesk"
)

// Kind distinguishes the two message kinds the dispatcher emits.
type Kind string

const (
	KindSupervisor Kind = "supervisor"
	KindCustomer   Kind = "customer"
)

// Message is a formatted notification ready for delivery.
type Message struct {
	Kind      Kind
	Recipient string
	Body      string
}

// Sink delivers a formatted message. Implementations may log, send SMS,
// call a webhook, etc.
type Sink interface {
	Deliver(ctx context.Context, msg *Message) error
}

// LogSink is the default transport: it emits the message through slog.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log-backed sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "notify")}
}

// Deliver implements Sink.
func (s *LogSink) Deliver(ctx context.Context, msg *Message) error {
	s.logger.Info("notification",
		"kind", string(msg.Kind),
		"recipient", msg.Recipient,
		"body", msg.Body)
	return nil
}

// Dispatcher formats and emits supervisor and customer notifications.
// Delivery is attempted with bounded exponential backoff; a message that
// still fails after the configured retries is reported as an error and
// otherwise dropped - callers treat notification as fire-and-forget.
type Dispatcher struct {
	sink    Sink
	retries uint64
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher delivering through the given sink with
// up to retries re-attempts per message.
func NewDispatcher(sink Sink, retries int, logger *slog.Logger) *Dispatcher {
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sink:    sink,
		retries: uint64(retries),
		logger:  logger.With("component", "notify"),
	}
}

// NotifySupervisor tells the supervisor a customer needs help.
func (d *Dispatcher) NotifySupervisor(ctx context.Context, req *helpdesk.HelpRequest) error {
	msg := &Message{
		Kind:      KindSupervisor,
		Recipient: "supervisor",
		Body:      formatSupervisorNotification(req),
	}
	return d.deliver(ctx, msg)
}

// NotifyCustomer sends the supervisor's answer back to the customer.
func (d *Dispatcher) NotifyCustomer(ctx context.Context, phone, question, answer string) error {
	msg := &Message{
		Kind:      KindCustomer,
		Recipient: phone,
		Body:      formatCustomerNotification(question, answer),
	}
	return d.deliver(ctx, msg)
}

// deliver attempts delivery with exponential backoff.
func (d *Dispatcher) deliver(ctx context.Context, msg *Message) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.retries), ctx)

	err := backoff.Retry(func() error {
		return d.sink.Deliver(ctx, msg)
	}, bo)
	if err != nil {
		d.logger.Error("notification delivery failed",
			"kind", string(msg.Kind),
			"recipient", msg.Recipient,
			"error", err)
		return fmt.Errorf("delivering %s notification: %w", msg.Kind, err)
	}
	return nil
}

func formatSupervisorNotification(req *helpdesk.HelpRequest) string {
	customer := req.CustomerName
	if customer == "" {
		customer = req.CustomerPhone
	}
	context := req.Context
	if context == "" {
		context = "No additional context"
	}

	return fmt.Sprintf(`Hey! I need help answering a customer question.

Customer: %s
Phone: %s

Question: %s

Context: %s

Request ID: %s

Please respond through the admin panel to help this customer!`,
		customer, req.CustomerPhone, req.Question, context, req.ID)
}

func formatCustomerNotification(question, answer string) string {
	return fmt.Sprintf(`Hi! Thanks for your patience. Here's the answer to your question:

Your question: %s

Answer: %s

Feel free to call us again if you have more questions!`,
		question, answer)
}
