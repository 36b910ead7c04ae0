// Package conversation orchestrates the customer-facing agent loop.
//
// Each session carries its own turn history and customer identity. On every
// message the orchestrator searches the knowledge base, builds a system
// prompt from the hits, and asks the completion capability for a reply. Two
// outcomes end in escalation: the reply contains the NEEDS_HELP sentinel, or
// the completion call fails outright. Escalation creates a pending help
// request with the full session history as context and tells the customer a
// supervisor will follow up.
//
// Knowledge entries that informed a successful answer get their usage
// counters bumped, which feeds back into the knowledge base's recency
// ordering.
package conversation
