// ABOUTME: Conservative token-count heuristic used to pick a chunking strategy
// ABOUTME: Over-estimates on purpose so content is never silently truncated
package core

import "math"

// chars-per-token divisor and safety multiplier for the estimate. Biased
// toward assuming more tokens than a real tokenizer would report; an
// undercount could pick a strategy that truncates content.
const (
	tokenCharsPerToken = 3.5
	tokenSafetyFactor  = 1.2
)

// EstimateTokens returns a conservative token count for text:
// ceil((len(text) / 3.5) * 1.2). Pure function, no caching.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / tokenCharsPerToken * tokenSafetyFactor))
}
