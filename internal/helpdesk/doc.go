// Package helpdesk owns the help request lifecycle.
//
// # State machine
//
// A HelpRequest starts pending and ends resolved (a supervisor answered) or
// timeout (the deadline passed first). Terminal states are terminal: resolve
// on a non-pending request is a no-op returning the current record, and the
// sweep only selects from the pending listing.
//
// # Side effects
//
// Each transition has at-most-once primary semantics (the store write) plus
// best-effort post-actions:
//
//   - Create: notify the supervisor (failure logged, request stands)
//   - Resolve: notify the customer, record the notified flag, ingest the
//     answer into the knowledge base (each individually fallible, none roll
//     back the resolution)
//
// # Sweep
//
// SweepTimeouts is designed for idempotent periodic invocation; the serve
// command runs it on a ticker and POST /api/help-requests/check-timeouts
// triggers it manually.
package helpdesk
