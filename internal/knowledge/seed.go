// ABOUTME: TOML seed file loading for pre-populating the knowledge base
// ABOUTME: Used by the seed CLI command before first serve

package knowledge

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
)

// seedFile is the TOML shape of a seed corpus.
type seedFile struct {
	Entries []seedEntry `toml:"entries"`
}

type seedEntry struct {
	Question string   `toml:"question"`
	Answer   string   `toml:"answer"`
	Category string   `toml:"category"`
	Keywords []string `toml:"keywords"`
}

// LoadSeedFile parses a TOML seed corpus into entry params.
func LoadSeedFile(path string) ([]EntryParams, error) {
	var file seedFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	params := make([]EntryParams, 0, len(file.Entries))
	for _, e := range file.Entries {
		params = append(params, EntryParams{
			Question: e.Question,
			Answer:   e.Answer,
			Category: e.Category,
			Keywords: e.Keywords,
		})
	}
	return params, nil
}

// Seed adds each entry, skipping and logging failures. Returns how many
// entries were added.
func (s *Service) Seed(ctx context.Context, entries []EntryParams) int {
	count := 0
	for _, params := range entries {
		if _, err := s.AddEntry(ctx, params); err != nil {
			s.logger.Warn("skipping seed entry",
				"question", params.Question,
				"error", err)
			continue
		}
		count++
	}

	s.logger.Info("knowledge base seeded", "entries", count)
	return count
}
