package retrieval

import (
	"regexp"
	"strings"
)

var stopWords = map[string]bool{
	"the": true, "is": true, "are": true, "a": true, "an": true, "and": true,
	"or": true, "but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "what": true, "how": true,
	"where": true, "when": true, "why": true, "who": true, "which": true,
}

var punctuation = regexp.MustCompile(`[^\w\s]`)

// extractKeywords strips punctuation and stop words, keeping terms longer
// than two characters as the signal for lexical search and re-ranking.
func extractKeywords(query string) []string {
	clean := punctuation.ReplaceAllString(strings.ToLower(query), " ")
	var keywords []string
	for _, word := range strings.Fields(clean) {
		if len(word) > 2 && !stopWords[word] {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
