// Package categorize assigns an expense category to raw invoice text by
// scoring the fixed taxonomy's keyword sets against it.
package categorize

import (
	"strings"

	"github.com/aj2nd/Save2/internal/model"
)

// Categorizer scores the shared category keyword table against text.
// It is stateless and safe for concurrent use.
type Categorizer struct {
	definitions []model.CategoryDefinition
}

// NewCategorizer creates a Categorizer over the model taxonomy.
func NewCategorizer() *Categorizer {
	return &Categorizer{definitions: model.CategoryDefinitions()}
}

// Categorize returns the best-scoring category for the text.
//
// A keyword contributes its token count to the category score, so
// multi-word keywords carry more signal and short substrings cause
// fewer false positives. Ties resolve to the category defined first in
// the taxonomy, which makes the result deterministic. A zero score
// across the board returns Miscellaneous.
func (c *Categorizer) Categorize(rawText string) model.Category {
	lower := strings.ToLower(rawText)

	best := model.CategoryMiscellaneous
	bestScore := 0

	for _, def := range c.definitions {
		score := 0
		for _, keyword := range def.Keywords {
			if strings.Contains(lower, keyword) {
				score += len(strings.Fields(keyword))
			}
		}
		// Strictly greater: earlier definitions win ties.
		if score > bestScore {
			best = def.Name
			bestScore = score
		}
	}

	return best
}
