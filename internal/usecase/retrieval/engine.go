package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/cache"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/llm"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

// Answer is the fully assembled result of one query: the synthesized text
// plus the chunks it was grounded on, in the order they were cited.
type Answer struct {
	QueryID   string
	Text      string
	Sources   []SearchHit
	Refused   bool
	LatencyMs int64
}

// Engine runs the full rewrite -> search -> fuse -> rerank -> synthesize
// pipeline behind one query and records the outcome for later evaluation.
type Engine struct {
	rewriter *QueryRewriter
	search   *HybridSearcher
	rerank   *Reranker
	llm      *llm.Client
	queries  repositories.QueryRepository
	cache    *cache.RedisClient
	cfg      *config.RetrievalConfig
}

// NewEngine wires the retrieval pipeline's stages together.
func NewEngine(
	rewriter *QueryRewriter,
	search *HybridSearcher,
	rerank *Reranker,
	llmClient *llm.Client,
	queries repositories.QueryRepository,
	cacheClient *cache.RedisClient,
	cfg *config.RetrievalConfig,
) *Engine {
	return &Engine{
		rewriter: rewriter,
		search:   search,
		rerank:   rerank,
		llm:      llmClient,
		queries:  queries,
		cache:    cacheClient,
		cfg:      cfg,
	}
}

// Answer runs one question through the pipeline stages the requested
// variant calls for, from semantic-only search up through query
// rewriting, hybrid blending, and reranking, and persists the resulting
// QueryEvent. The variants form a strict ladder: each adds one stage over
// the previous.
func (e *Engine) Answer(ctx context.Context, queryText, askedBy string, variant entities.RetrievalVariant) (*Answer, error) {
	start := time.Now()
	event := entities.NewQueryEvent(queryText, askedBy, variant)

	topK := e.cfg.DefaultTopK
	if topK <= 0 {
		topK = 5
	}

	var (
		fused []SearchHit
		err   error
	)
	switch variant {
	case entities.VariantSemantic:
		fused, err = e.answerSemantic(ctx, queryText, topK)
	case entities.VariantHybrid:
		fused, err = e.answerHybrid(ctx, queryText, topK, false)
	case entities.VariantHybridRerank:
		fused, err = e.answerHybrid(ctx, queryText, topK, true)
	default:
		fused, err = e.answerRewriteHybridRerank(ctx, queryText, topK, event)
	}
	if err != nil {
		return nil, err
	}

	event.ResultChunkIDs = make([]string, len(fused))
	for i, h := range fused {
		event.ResultChunkIDs[i] = h.ChunkID
	}

	if len(fused) == 0 {
		event.Refused = true
		event.Answer = "I couldn't find anything relevant to that question in the indexed videos."
		event.LatencyMs = time.Since(start).Milliseconds()
		if err := e.queries.Create(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to persist query event: %w", err)
		}
		return &Answer{QueryID: event.ID.String(), Text: event.Answer, Refused: true, LatencyMs: event.LatencyMs}, nil
	}

	answerText, synthErr := e.synthesize(ctx, queryText, fused)
	if synthErr != nil {
		answerText = "I found relevant excerpts but couldn't generate an answer right now; see the sources below."
	}

	event.Answer = answerText
	event.LatencyMs = time.Since(start).Milliseconds()
	if err := e.queries.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to persist query event: %w", err)
	}

	return &Answer{
		QueryID:   event.ID.String(),
		Text:      answerText,
		Sources:   fused,
		LatencyMs: event.LatencyMs,
	}, nil
}

// Retrieve runs one query through the given variant's search stages only,
// without synthesizing an answer or persisting a QueryEvent. It exists for
// the evaluation harness, which needs ranked chunk ids to score against a
// curated ground-truth set, not a generated answer.
func (e *Engine) Retrieve(ctx context.Context, queryText string, variant entities.RetrievalVariant, topK int) ([]SearchHit, error) {
	switch variant {
	case entities.VariantSemantic:
		return e.answerSemantic(ctx, queryText, topK)
	case entities.VariantHybrid:
		return e.answerHybrid(ctx, queryText, topK, false)
	case entities.VariantHybridRerank:
		return e.answerHybrid(ctx, queryText, topK, true)
	default:
		event := entities.NewQueryEvent(queryText, "evaluator", variant)
		return e.answerRewriteHybridRerank(ctx, queryText, topK, event)
	}
}

// answerSemantic runs the vector leg alone: no lexical blending, no
// rewriting, no reranking.
func (e *Engine) answerSemantic(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	hits, err := e.search.SearchSemantic(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("failed semantic search: %w", err)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].VectorScore > hits[j].VectorScore })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// answerHybrid runs the blended vector+lexical leg against the original
// query only, optionally passing the wider fanout through the reranker.
func (e *Engine) answerHybrid(ctx context.Context, query string, topK int, rerank bool) ([]SearchHit, error) {
	fanout := topK
	if rerank {
		fanout = topK * e.rerankMultiple()
	}
	hits, err := e.search.Search(ctx, query, fanout)
	if err != nil {
		return nil, fmt.Errorf("failed hybrid search: %w", err)
	}
	if rerank {
		hits = e.rerank.Rerank(query, hits)
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// answerRewriteHybridRerank is the full pipeline: rewrite the query into
// several variants, run each through hybrid search, fuse the per-variant
// rankings with reciprocal rank fusion, then rerank the fused result.
func (e *Engine) answerRewriteHybridRerank(ctx context.Context, query string, topK int, event *entities.QueryEvent) ([]SearchHit, error) {
	variants := e.rewriter.Rewrite(ctx, query)
	event.RewrittenQueries = variants

	rankings := make([][]SearchHit, 0, len(variants))
	for _, v := range variants {
		hits, err := e.search.Search(ctx, v, topK*e.rerankMultiple())
		if err != nil {
			return nil, fmt.Errorf("failed search for query variant %q: %w", v, err)
		}
		rankings = append(rankings, hits)
	}

	fused := reciprocalRankFusion(rankings, e.rrfK())
	fused = e.rerank.Rerank(query, fused)
	if len(fused) > topK {
		fused = fused[:topK]
	}
	return fused, nil
}

func (e *Engine) rerankMultiple() int {
	if e.cfg.RerankMultiple <= 0 {
		return 2
	}
	return e.cfg.RerankMultiple
}

func (e *Engine) rrfK() int {
	if e.cfg.RRFK <= 0 {
		return 60
	}
	return e.cfg.RRFK
}

func (e *Engine) synthesize(ctx context.Context, query string, hits []SearchHit) (string, error) {
	var excerpts strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&excerpts, "[%d] (%.0fs-%.0fs) %s\n\n", i+1, h.StartSecs, h.EndSecs, h.Text)
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: "You answer questions using only the numbered transcript excerpts provided. Cite excerpt numbers in brackets. If the excerpts don't contain the answer, say so plainly."},
		{Role: "user", Content: fmt.Sprintf("Excerpts:\n%s\nQuestion: %s", excerpts.String(), query)},
	}
	return e.llm.Complete(ctx, messages, 0.2, 800)
}

// reciprocalRankFusion combines several independently ranked hit lists
// into one, rewarding chunks that rank well across multiple query
// variants over chunks that rank first in only one.
func reciprocalRankFusion(rankings [][]SearchHit, k int) []SearchHit {
	scores := make(map[string]float64)
	best := make(map[string]SearchHit)

	for _, ranking := range rankings {
		for rank, hit := range ranking {
			scores[hit.ChunkID] += 1.0 / float64(k+rank+1)
			if existing, ok := best[hit.ChunkID]; !ok || hit.RerankScore > existing.RerankScore {
				best[hit.ChunkID] = hit
			}
		}
	}

	out := make([]SearchHit, 0, len(best))
	for id, hit := range best {
		hit.RerankScore = scores[id]
		out = append(out, hit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RerankScore > out[j].RerankScore })
	return out
}
