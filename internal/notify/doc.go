// Package notify formats and emits supervisor and customer notifications.
//
// Formatting is separated from transport so the Sink can be swapped
// (console, SMS, webhook) without touching the help request engine. The
// default LogSink writes through slog. Delivery failures are contained:
// the dispatcher returns an error, callers log it, and the triggering
// operation stands.
package notify
