// Package matching implements the attribute (text) scoring rules for
// lost/found item pairs. Scoring is pure: no I/O, no state.
//
// Callers must only score pairs that already pass the hard filters
// (same category, found.DateFound >= lost.DateLost); the repository
// query applies those, not this package.
package matching

import (
	"strings"

	"github.com/trovehq/trove/internal/models"
)

// MinScore is the minimum attribute score for a pair to be emitted as a
// text match. Pairs scoring below it are discarded.
const MinScore = 2

// Contribution weights for each attribute signal.
const (
	colorOverlapScore     = 2
	colorSubstringScore   = 1
	locationExactScore    = 3
	locationPartialScore  = 1
	descriptionMultiScore = 2
	descriptionOneScore   = 1
)

// stopwords are excluded from description token overlap.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "it": {},
	"with": {}, "and": {}, "on": {}, "my": {},
}

// Score computes the additive attribute score for a (lost, found) pair.
// Color, location, and description contribute independently; missing
// fields on either side contribute nothing.
func Score(lost *models.LostItem, found *models.FoundItem) int {
	score := 0
	score += colorScore(lost.Color, found.Color)
	score += locationScore(lost.Location, found.LocationFound)
	score += descriptionScore(lost.Description, found.Description)

	return score
}

// colorScore compares comma-separated color lists. Any shared token scores
// highest; a substring relation between the full strings scores lower.
// The token check takes priority, so at most one bonus applies.
func colorScore(lostColor, foundColor string) int {
	if lostColor == "" || foundColor == "" {
		return 0
	}

	lostTokens := colorTokens(lostColor)
	foundTokens := foundTokenSet(foundColor)

	for _, t := range lostTokens {
		if _, ok := foundTokens[t]; ok {
			return colorOverlapScore
		}
	}

	lostLower := strings.ToLower(lostColor)
	foundLower := strings.ToLower(foundColor)

	if strings.Contains(lostLower, foundLower) || strings.Contains(foundLower, lostLower) {
		return colorSubstringScore
	}

	return 0
}

// colorTokens splits a color field on commas with each token trimmed and lowercased.
func colorTokens(color string) []string {
	parts := strings.Split(color, ",")
	tokens := make([]string, 0, len(parts))

	for _, p := range parts {
		tokens = append(tokens, strings.ToLower(strings.TrimSpace(p)))
	}

	return tokens
}

func foundTokenSet(color string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range colorTokens(color) {
		set[t] = struct{}{}
	}

	return set
}

func locationScore(lostLocation, foundLocation string) int {
	if lostLocation == "" || foundLocation == "" {
		return 0
	}

	lostLower := strings.ToLower(lostLocation)
	foundLower := strings.ToLower(foundLocation)

	if lostLower == foundLower {
		return locationExactScore
	}

	if strings.Contains(lostLower, foundLower) || strings.Contains(foundLower, lostLower) {
		return locationPartialScore
	}

	return 0
}

// descriptionScore counts non-stopword tokens shared by both descriptions.
func descriptionScore(lostDescription, foundDescription string) int {
	if lostDescription == "" || foundDescription == "" {
		return 0
	}

	lostWords := strings.Fields(strings.ToLower(lostDescription))
	foundWords := make(map[string]struct{})

	for _, w := range strings.Fields(strings.ToLower(foundDescription)) {
		foundWords[w] = struct{}{}
	}

	overlap := make(map[string]struct{})

	for _, w := range lostWords {
		if _, ok := stopwords[w]; ok {
			continue
		}

		if _, ok := foundWords[w]; ok {
			overlap[w] = struct{}{}
		}
	}

	switch {
	case len(overlap) >= 2:
		return descriptionMultiScore
	case len(overlap) == 1:
		return descriptionOneScore
	default:
		return 0
	}
}
