// ABOUTME: Knowledge engine - owns the learned Q&A corpus
// ABOUTME: Scores and ranks entries against queries, ingests resolved requests

package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/frontdesk-gateway/internal/store"
)

// ErrValidation is returned when entry input fails validation.
var ErrValidation = errors.New("invalid knowledge entry")

// DefaultSearchLimit caps search results when the caller gives no limit.
const DefaultSearchLimit = 5

// maxKeywords caps derived keywords per entry.
const maxKeywords = 5

// KeywordExtractor defines what the service needs from the text-completion
// capability.
type KeywordExtractor interface {
	ExtractKeywords(ctx context.Context, text string) ([]string, error)
}

// Service manages the knowledge base the agent learns from.
type Service struct {
	store     store.Store
	extractor KeywordExtractor
	scorer    Scorer
	logger    *slog.Logger
}

// NewService creates a knowledge service. A nil scorer falls back to the
// default KeywordScorer.
func NewService(s store.Store, extractor KeywordExtractor, scorer Scorer, logger *slog.Logger) *Service {
	if scorer == nil {
		scorer = KeywordScorer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     s,
		extractor: extractor,
		scorer:    scorer,
		logger:    logger.With("component", "knowledge"),
	}
}

// EntryParams is the input for AddEntry.
type EntryParams struct {
	Question        string
	Answer          string
	Category        string
	Keywords        []string
	SourceRequestID string
}

// AddEntry persists a new knowledge entry. When no keywords are supplied
// they are derived from question+answer via the completion capability;
// extraction failure leaves the keyword set empty rather than failing the
// add (the entry is still findable by question containment).
func (s *Service) AddEntry(ctx context.Context, params EntryParams) (*Entry, error) {
	if strings.TrimSpace(params.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}
	if strings.TrimSpace(params.Answer) == "" {
		return nil, fmt.Errorf("%w: answer is required", ErrValidation)
	}

	keywords := params.Keywords
	if len(keywords) == 0 {
		extracted, err := s.extractor.ExtractKeywords(ctx, params.Question+" "+params.Answer)
		if err != nil {
			s.logger.Warn("keyword extraction failed", "error", err)
		} else {
			keywords = extracted
		}
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	if keywords == nil {
		keywords = []string{}
	}

	source := SourceManual
	if params.SourceRequestID != "" {
		source = SourceSupervisor
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:              uuid.New().String(),
		Question:        params.Question,
		Answer:          params.Answer,
		Category:        params.Category,
		Keywords:        keywords,
		Source:          source,
		SourceRequestID: params.SourceRequestID,
		Confidence:      1.0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	doc, err := entry.Document()
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, store.CollectionKnowledge, entry.ID, doc); err != nil {
		return nil, fmt.Errorf("saving knowledge entry: %w", err)
	}

	s.logger.Info("knowledge entry created",
		"entry_id", entry.ID,
		"source", source)
	return entry, nil
}

// AddFromResolvedRequest ingests the supervisor's answer from a resolved
// help request. Exactly one entry carries each source request ID.
func (s *Service) AddFromResolvedRequest(ctx context.Context, requestID, question, answer string) error {
	_, err := s.AddEntry(ctx, EntryParams{
		Question:        question,
		Answer:          answer,
		SourceRequestID: requestID,
	})
	return err
}

// Get returns an entry by ID, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	doc, err := s.store.Get(ctx, store.CollectionKnowledge, id)
	if err != nil {
		return nil, err
	}
	return EntryFromDocument(doc)
}

// ListAll returns every entry, most recently used first (falling back to
// creation time for entries never used).
func (s *Service) ListAll(ctx context.Context) ([]*Entry, error) {
	docs, err := s.store.ListAll(ctx, store.CollectionKnowledge)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge entries: %w", err)
	}

	entries := make([]*Entry, 0, len(docs))
	for id, doc := range docs {
		entry, err := EntryFromDocument(doc)
		if err != nil {
			s.logger.Warn("skipping malformed knowledge entry", "entry_id", id, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		ri, rj := entries[i].recency(), entries[j].recency()
		if ri.Equal(rj) {
			return entries[i].ID < entries[j].ID
		}
		return ri.After(rj)
	})
	return entries, nil
}

// Search returns up to limit entries ranked by relevance, highest first.
// Entries scoring zero are excluded. Ties keep the recency order from
// ListAll (the sort is stable).
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	entries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		entry *Entry
		score int
	}
	matches := make([]scored, 0, len(entries))
	for _, entry := range entries {
		if score := s.scorer.Score(entry, query); score > 0 {
			matches = append(matches, scored{entry, score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	results := make([]*Entry, len(matches))
	for i, m := range matches {
		results[i] = m.entry
	}
	return results, nil
}

// IncrementUsage bumps an entry's usage counter and stamps last_used_at.
// Returns false when the entry is missing or the write fails.
func (s *Service) IncrementUsage(ctx context.Context, id string) bool {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return false
	}

	now := time.Now().UTC()
	err = s.store.Update(ctx, store.CollectionKnowledge, id, store.Document{
		"times_used":   entry.TimesUsed + 1,
		"last_used_at": now.Format(time.RFC3339Nano),
		"updated_at":   now.Format(time.RFC3339Nano),
	})
	if err != nil {
		s.logger.Warn("usage increment failed", "entry_id", id, "error", err)
		return false
	}
	return true
}

// Summary holds aggregate statistics over the knowledge base.
type Summary struct {
	TotalEntries int            `json:"total_entries"`
	TotalUsage   int            `json:"total_usage"`
	Categories   map[string]int `json:"categories"`
	MostUsed     []*Entry       `json:"most_used"`
}

// Summary computes aggregate statistics. Entries without a category count
// under "uncategorized".
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	entries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalEntries: len(entries),
		Categories:   make(map[string]int),
	}
	for _, entry := range entries {
		summary.TotalUsage += entry.TimesUsed
		category := entry.Category
		if category == "" {
			category = "uncategorized"
		}
		summary.Categories[category]++
	}

	byUsage := make([]*Entry, len(entries))
	copy(byUsage, entries)
	sort.SliceStable(byUsage, func(i, j int) bool {
		return byUsage[i].TimesUsed > byUsage[j].TimesUsed
	})
	if len(byUsage) > 5 {
		byUsage = byUsage[:5]
	}
	summary.MostUsed = byUsage

	return summary, nil
}
