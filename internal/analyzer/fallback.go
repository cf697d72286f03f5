package analyzer

import (
	"strings"

	"frontier.app/frontier/internal/domain"
)

const (
	fallbackMinSentence = 30
	fallbackMaxItems    = 4
)

var limitationMarkers = []string{"however", "limitation", "challenge", "difficult", "unable", "cannot", "fail"}

var futureMarkers = []string{"future", "further", "next", "improve", "extend", "explore"}

// fallbackExtraction scans section text for limitation and future-work
// statements when structured extraction is unavailable. Output quality is
// intentionally modest; specific statements still clear the gap threshold.
func fallbackExtraction(text, ref string) *domain.Document {
	lower := strings.ToLower(text)

	limitations := scanSection(lower, "limitation", nil)
	for _, section := range []string{"conclusion", "discussion", "challenges"} {
		limitations = append(limitations, scanSection(lower, section, limitationMarkers)...)
	}
	futureWork := scanSection(lower, "future work", nil)
	futureWork = append(futureWork, scanSection(lower, "conclusion", futureMarkers)...)

	return &domain.Document{
		Ref:         ref,
		Title:       guessTitle(text),
		Limitations: dedupStatements(limitations),
		FutureWork:  dedupStatements(futureWork),
	}
}

// scanSection takes sentences after the first occurrence of marker. When
// keywords is non-nil only sentences containing one of them qualify.
func scanSection(lower, marker string, keywords []string) []string {
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return nil
	}
	section := lower[idx+len(marker):]
	if len(section) > 1500 {
		section = section[:1500]
	}

	var out []string
	for _, sentence := range strings.Split(section, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < fallbackMinSentence {
			continue
		}
		if keywords != nil && !containsAny(sentence, keywords) {
			continue
		}
		out = append(out, sentence)
		if len(out) == fallbackMaxItems {
			break
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func dedupStatements(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if len(out) == fallbackMaxItems {
			break
		}
	}
	return out
}

// guessTitle takes the first substantial line that is not a header artifact.
func guessTitle(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i >= 15 {
			break
		}
		line = strings.TrimSpace(line)
		if len(line) > 15 && line != strings.ToUpper(line) && !strings.HasPrefix(line, "arXiv:") {
			return line
		}
	}
	return "Unknown Title"
}
