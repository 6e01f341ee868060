package retrieval

import (
	"sort"
	"strings"
)

// Reranker refines a hybrid-search result set by folding in query/document
// keyword overlap and a length penalty that discounts chunks too short to
// carry standalone meaning or too long to be a precise answer span.
type Reranker struct{}

// NewReranker constructs the rerank stage.
func NewReranker() *Reranker {
	return &Reranker{}
}

// Rerank scores and re-sorts hits in place, returning the same slice for
// convenient chaining.
func (r *Reranker) Rerank(query string, hits []SearchHit) []SearchHit {
	queryKeywords := extractKeywords(query)
	queryKeywordSet := make(map[string]bool, len(queryKeywords))
	for _, kw := range queryKeywords {
		queryKeywordSet[kw] = true
	}

	for i := range hits {
		docKeywords := extractKeywords(hits[i].Text)
		overlap := overlapScore(queryKeywordSet, docKeywords)
		penalty := lengthPenalty(hits[i].Text)
		hits[i].RerankScore = hits[i].HybridScore*0.7 + overlap*0.2 + penalty*0.1
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].RerankScore > hits[j].RerankScore })
	return hits
}

func overlapScore(queryKeywords map[string]bool, docKeywords []string) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(docKeywords))
	var matched int
	for _, kw := range docKeywords {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		if queryKeywords[kw] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryKeywords))
}

// lengthPenalty discounts chunks that are unusually short (likely a
// fragment lacking context) or unusually long (likely to dilute the
// answer span), matching the corpus's typical word-window sizes.
func lengthPenalty(text string) float64 {
	words := len(strings.Fields(text))
	switch {
	case words < 50:
		return 0.8
	case words > 300:
		return 0.9
	default:
		return 1.0
	}
}
