package retrieval

// SearchHit is one chunk surfaced by a search pass, carrying every score
// component so later stages (rerank, fusion, presentation) can inspect
// how it was found rather than only its final rank.
type SearchHit struct {
	ChunkID      string
	SubmissionID string
	Text         string
	StartSecs    float64
	EndSecs      float64
	VectorScore  float64
	TextScore    float64
	HybridScore  float64
	RerankScore  float64
	Method       string // "vector", "lexical", or "both"
}
