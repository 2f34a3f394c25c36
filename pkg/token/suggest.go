package token

import "github.com/agext/levenshtein"

// maxSuggestDistance caps fuzzy keyword suggestions to keep them tight.
const maxSuggestDistance = 2

// SuggestKeyword returns the closest reserved word to ident within
// maxSuggestDistance edits, or "" if none is close enough. Matching is
// case-insensitive, mirroring keyword lookup itself.
func SuggestKeyword(ident string) string {
	needle := toLower(ident)
	best := ""
	bestDist := maxSuggestDistance + 1

	for _, name := range Keywords() {
		dist := levenshtein.Distance(needle, toLower(name), nil)
		if dist < bestDist {
			bestDist = dist
			best = name
		}
	}

	if bestDist > maxSuggestDistance {
		return ""
	}
	return best
}
