package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearch_RanksByCosineSimilarityDescending(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Upsert("chunk-a", "sub-1", []float32{1, 0, 0}))
	require.NoError(t, s.Upsert("chunk-b", "sub-1", []float32{0, 1, 0}))
	require.NoError(t, s.Upsert("chunk-c", "sub-1", []float32{0.9, 0.1, 0}))

	matches, err := s.Search([]float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "chunk-a", matches[0].ChunkID)
	assert.Equal(t, "chunk-c", matches[1].ChunkID)
	assert.Equal(t, "chunk-b", matches[2].ChunkID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestSearch_TruncatesToTopK(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Upsert("chunk-a", "sub-1", []float32{1, 0}))
	require.NoError(t, s.Upsert("chunk-b", "sub-1", []float32{0, 1}))
	require.NoError(t, s.Upsert("chunk-c", "sub-1", []float32{1, 1}))

	matches, err := s.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestUpsert_ReplacesExistingVectorForSameChunkID(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Upsert("chunk-a", "sub-1", []float32{1, 0}))
	require.NoError(t, s.Upsert("chunk-a", "sub-1", []float32{0, 1}))

	matches, err := s.Search([]float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestDelete_RemovesChunkFromSubsequentSearches(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Upsert("chunk-a", "sub-1", []float32{1, 0}))
	require.NoError(t, s.Upsert("chunk-b", "sub-1", []float32{0, 1}))
	require.NoError(t, s.Delete("chunk-a"))

	matches, err := s.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "chunk-b", matches[0].ChunkID)
}

func TestCosineSimilarity_ZeroVectorScoresZero(t *testing.T) {
	assert.Equal(t, float32(0), cosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3}))
}

func TestCosineSimilarity_IdenticalVectorsScoreOne(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-6)
}

func TestCosineSimilarity_OrthogonalVectorsScoreZero(t *testing.T) {
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
}
