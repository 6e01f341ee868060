package query

import "github.com/johnquangdev/yt-rag-engine/internal/usecase/retrieval"

// SourceResponse is one cited transcript excerpt behind an answer.
type SourceResponse struct {
	SubmissionID string  `json:"submission_id"`
	StartSecs    float64 `json:"start_secs"`
	EndSecs      float64 `json:"end_secs"`
	Text         string  `json:"text"`
	Score        float64 `json:"score"`
}

// AnswerResponse is the API-facing view of a synthesized answer.
type AnswerResponse struct {
	QueryID   string            `json:"query_id"`
	Answer    string            `json:"answer"`
	Refused   bool              `json:"refused"`
	LatencyMs int64             `json:"latency_ms"`
	Sources   []SourceResponse  `json:"sources,omitempty"`
}

// FromEngineAnswer builds an AnswerResponse from an engine result.
func FromEngineAnswer(a *retrieval.Answer) AnswerResponse {
	sources := make([]SourceResponse, len(a.Sources))
	for i, s := range a.Sources {
		sources[i] = SourceResponse{
			SubmissionID: s.SubmissionID,
			StartSecs:    s.StartSecs,
			EndSecs:      s.EndSecs,
			Text:         s.Text,
			Score:        s.RerankScore,
		}
	}
	return AnswerResponse{
		QueryID:   a.QueryID,
		Answer:    a.Text,
		Refused:   a.Refused,
		LatencyMs: a.LatencyMs,
		Sources:   sources,
	}
}
