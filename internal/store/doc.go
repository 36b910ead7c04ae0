// Package store provides persistent storage for the gateway using SQLite.
//
// # Architecture
//
// The store exposes a single generic interface over schemaless documents:
//
//   - Store: Set / Get / Update / ListAll over (collection, id) keys
//
// The engines own their record shapes; the store only sees JSON documents.
// Collections in use:
//
//   - help_requests: escalation records (see internal/helpdesk)
//   - knowledge_base: learned Q&A entries (see internal/knowledge)
//   - customers: caller tracking (see internal/conversation)
//
// # Concurrency
//
// Documents are mutated via read-modify-write. Update runs its merge inside
// a transaction, but there is no optimistic concurrency token: across
// transactions the last writer wins. This matches how the engines use the
// store (a given help request is resolved by at most one supervisor action).
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//
// # Error Handling
//
// ErrNotFound is returned when a requested document does not exist.
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMemoryStore() for unit tests and NewSQLiteStore(":memory:") for
// integration tests with real SQLite.
package store
