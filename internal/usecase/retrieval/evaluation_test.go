package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

type fakeQueryRepo struct {
	events []*entities.QueryEvent
}

func (f *fakeQueryRepo) Create(ctx context.Context, q *entities.QueryEvent) error { return nil }
func (f *fakeQueryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.QueryEvent, error) {
	return nil, nil
}
func (f *fakeQueryRepo) ListRecent(ctx context.Context, since time.Time, limit int) ([]*entities.QueryEvent, error) {
	return f.events, nil
}

type fakeFeedbackRepo struct {
	byQuery map[uuid.UUID][]*entities.FeedbackEvent
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, fb *entities.FeedbackEvent) error { return nil }
func (f *fakeFeedbackRepo) ListByQueryID(ctx context.Context, queryID uuid.UUID) ([]*entities.FeedbackEvent, error) {
	return f.byQuery[queryID], nil
}
func (f *fakeFeedbackRepo) CountByRating(ctx context.Context, since time.Time) (map[entities.FeedbackRating]int64, error) {
	return nil, nil
}

func TestEvaluator_ScoreWindow_ComputesSatisfactionAndRefusalRates(t *testing.T) {
	hybridQ1 := uuid.New()
	hybridQ2 := uuid.New()
	vectorQ1 := uuid.New()

	queries := &fakeQueryRepo{events: []*entities.QueryEvent{
		{ID: hybridQ1, Variant: entities.VariantHybrid},
		{ID: hybridQ2, Variant: entities.VariantHybrid, Refused: true},
		{ID: vectorQ1, Variant: entities.VariantSemantic},
	}}
	feedbacks := &fakeFeedbackRepo{byQuery: map[uuid.UUID][]*entities.FeedbackEvent{
		hybridQ1: {{Rating: entities.RatingPositive}},
		hybridQ2: {{Rating: entities.RatingNegative}},
	}}

	eval := NewEvaluator(queries, feedbacks, nil)
	scores, err := eval.ScoreWindow(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, scores, 2)

	var hybrid, vector VariantScore
	for _, s := range scores {
		switch s.Variant {
		case entities.VariantHybrid:
			hybrid = s
		case entities.VariantSemantic:
			vector = s
		}
	}

	assert.Equal(t, int64(2), hybrid.QueriesAsked)
	assert.Equal(t, int64(1), hybrid.Refused)
	assert.Equal(t, int64(1), hybrid.Positive)
	assert.Equal(t, int64(1), hybrid.Negative)
	assert.Equal(t, 0.5, hybrid.SatisfactionRate)
	assert.Equal(t, 0.5, hybrid.RefusalRate)

	assert.Equal(t, int64(1), vector.QueriesAsked)
	assert.Equal(t, 0.0, vector.SatisfactionRate, "no feedback yet means no satisfaction signal")
}

func TestEvaluator_ScoreWindow_NoEvents(t *testing.T) {
	eval := NewEvaluator(&fakeQueryRepo{}, &fakeFeedbackRepo{}, nil)
	scores, err := eval.ScoreWindow(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, scores)
}

// fakeRetriever returns a fixed ranking per (query, variant) pair, letting
// EvaluateRetrieval's scoring math be tested without a real search stack.
type fakeRetriever struct {
	byQuery map[string]map[entities.RetrievalVariant][]SearchHit
}

func (f *fakeRetriever) Retrieve(ctx context.Context, queryText string, variant entities.RetrievalVariant, topK int) ([]SearchHit, error) {
	hits := f.byQuery[queryText][variant]
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func TestEvaluator_EvaluateRetrieval_ComputesHitRateAndMRR(t *testing.T) {
	retr := &fakeRetriever{byQuery: map[string]map[entities.RetrievalVariant][]SearchHit{
		"what is a goroutine": {
			entities.VariantSemantic: {{ChunkID: "miss-1"}, {ChunkID: "expected-1"}, {ChunkID: "miss-2"}},
			entities.VariantHybrid:   {{ChunkID: "expected-1"}, {ChunkID: "miss-1"}, {ChunkID: "miss-2"}},
		},
		"what is a channel": {
			entities.VariantSemantic: {{ChunkID: "miss-3"}, {ChunkID: "miss-4"}, {ChunkID: "miss-5"}},
			entities.VariantHybrid:   {{ChunkID: "expected-2"}, {ChunkID: "miss-4"}, {ChunkID: "miss-5"}},
		},
	}}
	eval := NewEvaluator(&fakeQueryRepo{}, &fakeFeedbackRepo{}, retr)

	cases := []GroundTruthCase{
		{Query: "what is a goroutine", ExpectedChunkIDs: []string{"expected-1"}},
		{Query: "what is a channel", ExpectedChunkIDs: []string{"expected-2"}},
	}
	variants := []entities.RetrievalVariant{entities.VariantSemantic, entities.VariantHybrid}

	report, err := eval.EvaluateRetrieval(context.Background(), cases, variants, 3)
	require.NoError(t, err)
	require.Len(t, report, 2)

	byVariant := make(map[entities.RetrievalVariant]RetrievalMetrics, len(report))
	for _, m := range report {
		byVariant[m.Variant] = m
	}

	assert.Equal(t, 0.5, byVariant[entities.VariantSemantic].HitRateAtK, "semantic only finds the goroutine case")
	assert.InDelta(t, 0.25, byVariant[entities.VariantSemantic].MRR, 1e-9, "one hit at rank 2, one miss")
	assert.Equal(t, 1.0, byVariant[entities.VariantHybrid].HitRateAtK, "hybrid finds both cases")
	assert.InDelta(t, 1.0, byVariant[entities.VariantHybrid].MRR, 1e-9, "both hits rank 1st")

	assert.Equal(t, entities.VariantHybrid, report[0].Variant, "report is sorted best hit-rate first")
}

func TestEvaluator_EvaluateRetrieval_MissedCaseScoresZero(t *testing.T) {
	retr := &fakeRetriever{byQuery: map[string]map[entities.RetrievalVariant][]SearchHit{
		"what is a channel": {
			entities.VariantSemantic: {{ChunkID: "miss-1"}, {ChunkID: "miss-2"}},
		},
	}}
	eval := NewEvaluator(&fakeQueryRepo{}, &fakeFeedbackRepo{}, retr)

	cases := []GroundTruthCase{{Query: "what is a channel", ExpectedChunkIDs: []string{"expected-1"}}}
	report, err := eval.EvaluateRetrieval(context.Background(), cases, []entities.RetrievalVariant{entities.VariantSemantic}, 3)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Zero(t, report[0].HitRateAtK)
	assert.Zero(t, report[0].MRR)
}

func TestEvaluator_EvaluateRetrieval_NoEngineWiredReturnsError(t *testing.T) {
	eval := NewEvaluator(&fakeQueryRepo{}, &fakeFeedbackRepo{}, nil)
	_, err := eval.EvaluateRetrieval(context.Background(), []GroundTruthCase{{Query: "x"}}, []entities.RetrievalVariant{entities.VariantSemantic}, 3)
	assert.Error(t, err)
}
