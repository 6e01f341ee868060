package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/embedding"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/vectorstore"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

// HybridSearcher blends a vector similarity pass with a lexical keyword
// pass into a single ranked list, weighting each leg per configuration and
// rewarding chunks that both methods agree on.
type HybridSearcher struct {
	vectors  *vectorstore.Store
	embedder *embedding.Client
	chunks   repositories.ChunkRepository
	cfg      *config.RetrievalConfig
}

// NewHybridSearcher constructs the blended search leg.
func NewHybridSearcher(vectors *vectorstore.Store, embedder *embedding.Client, chunks repositories.ChunkRepository, cfg *config.RetrievalConfig) *HybridSearcher {
	return &HybridSearcher{vectors: vectors, embedder: embedder, chunks: chunks, cfg: cfg}
}

// Search runs both legs for one query string and returns the combined,
// score-sorted hits, wider than topK so a reranker has room to work.
func (h *HybridSearcher) Search(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	fanout := topK * 2

	vecHits, err := h.vectorSearch(ctx, query, fanout)
	if err != nil {
		return nil, fmt.Errorf("failed vector search leg: %w", err)
	}
	textHits, err := h.textSearch(ctx, query, fanout)
	if err != nil {
		return nil, fmt.Errorf("failed lexical search leg: %w", err)
	}

	return h.combine(vecHits, textHits), nil
}

// SearchSemantic runs the vector-similarity leg alone, with no lexical
// blending, feeding the semantic-only retrieval variant.
func (h *HybridSearcher) SearchSemantic(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	hits, err := h.vectorSearch(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("failed vector search leg: %w", err)
	}
	for i := range hits {
		hits[i].HybridScore = hits[i].VectorScore
		hits[i].Method = "vector"
	}
	return hits, nil
}

func (h *HybridSearcher) vectorSearch(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	vec, err := h.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	matches, err := h.vectors.Search(vec, limit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkID
	}
	chunks, err := h.chunks.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]int, len(chunks))
	for i, c := range chunks {
		byID[c.ID] = i
	}

	var hits []SearchHit
	for _, m := range matches {
		idx, ok := byID[m.ChunkID]
		if !ok {
			continue
		}
		c := chunks[idx]
		hits = append(hits, SearchHit{
			ChunkID:      c.ID,
			SubmissionID: c.SubmissionID.String(),
			Text:         c.Text,
			StartSecs:    c.StartSecs,
			EndSecs:      c.EndSecs,
			VectorScore:  float64(m.Score),
		})
	}
	return hits, nil
}

func (h *HybridSearcher) textSearch(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return nil, nil
	}
	chunks, err := h.chunks.SearchByKeywords(ctx, keywords, limit)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for _, c := range chunks {
		score := textScore(c.Text, keywords)
		if score <= 0 {
			continue
		}
		hits = append(hits, SearchHit{
			ChunkID:      c.ID,
			SubmissionID: c.SubmissionID.String(),
			Text:         c.Text,
			StartSecs:    c.StartSecs,
			EndSecs:      c.EndSecs,
			TextScore:    score,
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].TextScore > hits[j].TextScore })
	return hits, nil
}

// textScore rewards both raw keyword density and keyword coverage, so a
// chunk repeating one keyword many times doesn't outrank one that
// addresses more of the query.
func textScore(text string, keywords []string) float64 {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) == 0 {
		return 0
	}

	var totalMatches float64
	var covered int
	for _, kw := range keywords {
		count := strings.Count(lower, kw)
		if count == 0 {
			continue
		}
		covered++
		totalMatches += float64(count)
	}

	density := totalMatches / float64(len(words))
	coverage := float64(covered) / float64(len(keywords))
	return density * coverage
}

func (h *HybridSearcher) combine(vecHits, textHits []SearchHit) []SearchHit {
	merged := make(map[string]*SearchHit)

	for _, hit := range vecHits {
		h := hit
		merged[h.ChunkID] = &h
	}
	for _, hit := range textHits {
		if existing, ok := merged[hit.ChunkID]; ok {
			existing.TextScore = math.Max(existing.TextScore, hit.TextScore)
		} else {
			h := hit
			merged[h.ChunkID] = &h
		}
	}

	out := make([]SearchHit, 0, len(merged))
	for _, hit := range merged {
		bothMethods := hit.VectorScore > 0 && hit.TextScore > 0
		hit.HybridScore = h.cfg.SemanticWeight*hit.VectorScore + h.cfg.LexicalWeight*hit.TextScore
		if bothMethods {
			hit.HybridScore += 0.1
			hit.Method = "both"
		} else if hit.VectorScore > 0 {
			hit.Method = "vector"
		} else {
			hit.Method = "lexical"
		}
		out = append(out, *hit)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].HybridScore > out[j].HybridScore })
	return out
}
