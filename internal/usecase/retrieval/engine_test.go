package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

func TestReciprocalRankFusion_RewardsChunksRankedWellAcrossVariants(t *testing.T) {
	rankings := [][]SearchHit{
		{{ChunkID: "a"}, {ChunkID: "b"}, {ChunkID: "c"}},
		{{ChunkID: "b"}, {ChunkID: "a"}, {ChunkID: "d"}},
		{{ChunkID: "a"}},
	}

	out := reciprocalRankFusion(rankings, 60)

	assert.Len(t, out, 4)
	assert.Equal(t, "a", out[0].ChunkID, "a ranks 1st, 2nd and 1st across variants, edging out b's 2nd/1st")
	assert.Equal(t, "b", out[1].ChunkID)
}

func TestReciprocalRankFusion_SingleRankingPreservesOrder(t *testing.T) {
	rankings := [][]SearchHit{
		{{ChunkID: "x"}, {ChunkID: "y"}, {ChunkID: "z"}},
	}
	out := reciprocalRankFusion(rankings, 60)
	assert.Equal(t, []string{"x", "y", "z"}, []string{out[0].ChunkID, out[1].ChunkID, out[2].ChunkID})
}

func TestReciprocalRankFusion_EmptyRankingsProducesNoHits(t *testing.T) {
	assert.Empty(t, reciprocalRankFusion(nil, 60))
}

func TestEngine_RerankMultiple_DefaultsWhenUnset(t *testing.T) {
	e := &Engine{cfg: &config.RetrievalConfig{}}
	assert.Equal(t, 2, e.rerankMultiple())
}

func TestEngine_RerankMultiple_UsesConfiguredValue(t *testing.T) {
	e := &Engine{cfg: &config.RetrievalConfig{RerankMultiple: 5}}
	assert.Equal(t, 5, e.rerankMultiple())
}

func TestEngine_RRFK_DefaultsWhenUnset(t *testing.T) {
	e := &Engine{cfg: &config.RetrievalConfig{}}
	assert.Equal(t, 60, e.rrfK())
}

func TestEngine_RRFK_UsesConfiguredValue(t *testing.T) {
	e := &Engine{cfg: &config.RetrievalConfig{RRFK: 30}}
	assert.Equal(t, 30, e.rrfK())
}
