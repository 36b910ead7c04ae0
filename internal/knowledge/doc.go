// Package knowledge owns the learned Q&A corpus.
//
// Entries arrive two ways: manual seeding (the seed command or
// POST /api/knowledge) and automatic ingestion when a help request is
// resolved. Either way the entry is scored against future customer questions
// so the agent can answer without re-escalating.
//
// Search relevance is a pluggable Scorer; the default KeywordScorer does
// case-insensitive substring matching (+3 for query-in-question, +1 per
// keyword-in-query). Swapping in embedding-based similarity later only
// touches the scorer, not the ranking or limit logic.
//
// Usage tracking (IncrementUsage) is a best-effort secondary effect - the
// counter is monotonically non-decreasing and last_used_at moves only when
// the counter does.
package knowledge
