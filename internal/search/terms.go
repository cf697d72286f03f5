package search

import (
	"regexp"
	"strings"
)

const maxKeyTerms = 5

var wordPattern = regexp.MustCompile(`[a-zA-Z]{3,}`)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "but": {}, "for": {}, "with": {},
	"from": {}, "are": {}, "was": {}, "were": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "can": {}, "that": {}, "which": {}, "who": {},
	"where": {}, "when": {}, "why": {}, "how": {}, "this": {},
	"these": {}, "those": {}, "often": {}, "always": {}, "never": {},
	"sometimes": {}, "usually": {}, "frequently": {},
}

// KeyTerms extracts up to five meaningful search terms from a gap
// description, skipping stop words and short tokens. It never returns an
// empty slice.
func KeyTerms(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	terms := make([]string, 0, maxKeyTerms)
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		terms = append(terms, word)
		if len(terms) == maxKeyTerms {
			break
		}
	}
	if len(terms) == 0 {
		return []string{"research", "method"}
	}
	return terms
}
