package submission

import (
	"time"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// SubmissionResponse is the API-facing view of a Submission.
type SubmissionResponse struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	SourceURL    string     `json:"source_url,omitempty"`
	OriginalName string     `json:"original_name,omitempty"`
	Stage        string     `json:"stage"`
	Status       string     `json:"status"`
	AttemptCount int        `json:"attempt_count"`
	LastError    string     `json:"last_error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// FromEntity builds a SubmissionResponse from a domain submission.
func FromEntity(s *entities.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           s.ID.String(),
		Source:       string(s.Source),
		SourceURL:    s.SourceURL,
		OriginalName: s.OriginalName,
		Stage:        string(s.Stage),
		Status:       string(s.Status),
		AttemptCount: s.AttemptCount,
		LastError:    s.LastError,
		CreatedAt:    s.CreatedAt,
		CompletedAt:  s.CompletedAt,
	}
}
