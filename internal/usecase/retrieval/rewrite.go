package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/llm"
)

// questionPrefixes turns a bare keyword query into a question, on the
// theory that transcripts answer questions more often than they state
// keywords verbatim.
var questionPrefixes = []string{"what is", "how does", "why does"}

// synonyms maps a handful of domain-agnostic terms to alternates likely to
// appear in spoken transcripts instead of the query's own wording.
var synonyms = map[string][]string{
	"explain":   {"describe", "clarify"},
	"discuss":   {"talk about", "cover"},
	"mention":   {"reference", "bring up"},
	"recommend": {"suggest", "advise"},
	"problem":   {"issue", "challenge"},
	"solution":  {"fix", "approach"},
}

// QueryRewriter expands one user query into several phrasings so the
// hybrid search stage isn't at the mercy of the asker's exact wording.
type QueryRewriter struct {
	llm   *llm.Client
	count int
}

// NewQueryRewriter constructs the rewrite stage. count bounds how many
// LLM-generated variants are requested; rule-based variants are added on
// top of whatever the model returns.
func NewQueryRewriter(client *llm.Client, count int) *QueryRewriter {
	if count <= 0 {
		count = 3
	}
	return &QueryRewriter{llm: client, count: count}
}

// Rewrite returns the original query first, followed by deduplicated
// LLM and rule-based variants.
func (r *QueryRewriter) Rewrite(ctx context.Context, query string) []string {
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}
	variants := []string{query}

	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		key := strings.ToLower(candidate)
		if seen[key] {
			return
		}
		seen[key] = true
		variants = append(variants, candidate)
	}

	for _, v := range r.llmVariants(ctx, query) {
		add(v)
	}
	for _, v := range r.ruleBasedVariants(query) {
		add(v)
	}

	return variants
}

func (r *QueryRewriter) llmVariants(ctx context.Context, query string) []string {
	if r.llm == nil {
		return nil
	}
	prompt := fmt.Sprintf(
		"Rewrite this search query %d different ways, preserving its meaning, one per line with no numbering:\n%s",
		r.count, query,
	)
	reply, err := r.llm.Complete(ctx, []llm.ChatMessage{
		{Role: "user", Content: prompt},
	}, 0.5, 256)
	if err != nil {
		return nil
	}

	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (r *QueryRewriter) ruleBasedVariants(query string) []string {
	var out []string

	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)
	isQuestion := strings.HasSuffix(trimmed, "?") ||
		strings.HasPrefix(lower, "what") || strings.HasPrefix(lower, "how") ||
		strings.HasPrefix(lower, "why") || strings.HasPrefix(lower, "when") ||
		strings.HasPrefix(lower, "where") || strings.HasPrefix(lower, "who")
	if !isQuestion {
		for _, prefix := range questionPrefixes {
			out = append(out, fmt.Sprintf("%s %s", prefix, trimmed))
		}
	}

	expanded := lower
	for term, alts := range synonyms {
		if strings.Contains(expanded, term) {
			for _, alt := range alts {
				out = append(out, strings.Replace(lower, term, alt, 1))
			}
		}
	}

	if keywords := extractKeywords(query); len(keywords) > 0 {
		out = append(out, strings.Join(keywords, " "))
	}

	return out
}
