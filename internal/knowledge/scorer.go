// ABOUTME: Relevance scoring for knowledge search
// ABOUTME: Pluggable so keyword matching can later be swapped for embeddings

package knowledge

import "strings"

// Scorer assigns a relevance score to an entry for a query. Entries scoring
// zero are excluded from search results.
type Scorer interface {
	Score(entry *Entry, query string) int
}

// KeywordScorer is the default substring-based scorer: 3 points when the
// whole query appears in the entry's question (case-insensitive), plus 1 for
// each entry keyword appearing as a substring of the query.
type KeywordScorer struct{}

// Score implements Scorer.
func (KeywordScorer) Score(entry *Entry, query string) int {
	queryLower := strings.ToLower(query)

	score := 0
	if strings.Contains(strings.ToLower(entry.Question), queryLower) {
		score += 3
	}
	for _, keyword := range entry.Keywords {
		if keyword != "" && strings.Contains(queryLower, strings.ToLower(keyword)) {
			score++
		}
	}
	return score
}
