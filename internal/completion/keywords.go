// ABOUTME: Keyword extraction shared by every completion backend
// ABOUTME: Prompts for comma-separated keywords and parses the reply

package completion

import (
	"context"
	"strings"
)

const keywordInstruction = "Extract 3-5 keywords from the following text. Return only keywords separated by commas."

// completer is the generation half of Client, enough for extraction.
type completer interface {
	Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
}

// extractKeywords asks the backend for comma-separated keywords and parses
// the reply into at most 5 trimmed, non-empty strings.
func extractKeywords(ctx context.Context, c completer, text string) ([]string, error) {
	reply, err := c.Complete(ctx, []Message{
		{Role: RoleSystem, Content: keywordInstruction},
		{Role: RoleUser, Content: text},
	}, 0.3, 50)
	if err != nil {
		return nil, err
	}

	var keywords []string
	for _, part := range strings.Split(reply, ",") {
		keyword := strings.TrimSpace(part)
		if keyword == "" {
			continue
		}
		keywords = append(keywords, keyword)
		if len(keywords) == 5 {
			break
		}
	}
	return keywords, nil
}
