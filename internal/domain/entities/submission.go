package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SubmissionSource distinguishes how a submission entered the pipeline.
type SubmissionSource string

const (
	SourceYouTubeURL SubmissionSource = "youtube_url"
	SourceAudioFile  SubmissionSource = "audio_file"
)

// SubmissionStage tracks a submission's position in the ingestion pipeline.
type SubmissionStage string

const (
	StageQueued       SubmissionStage = "queued"
	StageDownloading  SubmissionStage = "downloading"
	StageTranscribing SubmissionStage = "transcribing"
	StageChunking     SubmissionStage = "chunking"
	StageEmbedding    SubmissionStage = "embedding"
	StageIndexed      SubmissionStage = "indexed"
	StageFailed       SubmissionStage = "failed"
	StageCancelled    SubmissionStage = "cancelled"
)

// SubmissionStatus is the coarse-grained lifecycle status.
type SubmissionStatus string

const (
	StatusPending    SubmissionStatus = "pending"
	StatusInProgress SubmissionStatus = "in_progress"
	StatusCompleted  SubmissionStatus = "completed"
	StatusFailed     SubmissionStatus = "failed"
	StatusCancelled  SubmissionStatus = "cancelled"
)

// Submission is the root unit of ingestion work: one URL or uploaded audio
// file traveling through download -> transcribe -> chunk -> embed -> index.
type Submission struct {
	ID              uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Source          SubmissionSource                   `json:"source" gorm:"type:varchar(32);not null"`
	SourceURL       string                             `json:"source_url,omitempty" gorm:"type:text;index"`
	SourceHash      string                             `json:"source_hash" gorm:"type:varchar(64);not null;index"`
	OriginalName    string                             `json:"original_name,omitempty" gorm:"type:text"`
	Stage           SubmissionStage                    `json:"stage" gorm:"type:varchar(32);not null;index"`
	Status          SubmissionStatus                   `json:"status" gorm:"type:varchar(32);not null;index"`
	RequestedBy     string                             `json:"requested_by,omitempty" gorm:"type:varchar(255);index"`
	ClaimedBy       string                             `json:"claimed_by,omitempty" gorm:"type:varchar(255)"`
	ClaimExpiresAt  *time.Time                         `json:"claim_expires_at,omitempty"`
	AttemptCount    int                                `json:"attempt_count" gorm:"default:0"`
	LastError       string                             `json:"last_error,omitempty" gorm:"type:text"`
	CancelRequested bool                               `json:"cancel_requested" gorm:"default:false"`
	Metadata        datatypes.JSONType[map[string]any] `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time                          `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time                          `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt     *time.Time                         `json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM.
func (Submission) TableName() string {
	return "submissions"
}

// NewSubmission builds a submission ready to enter the queued stage.
func NewSubmission(source SubmissionSource, sourceURL, sourceHash, requestedBy string) *Submission {
	return &Submission{
		ID:          uuid.New(),
		Source:      source,
		SourceURL:   sourceURL,
		SourceHash:  sourceHash,
		RequestedBy: requestedBy,
		Stage:       StageQueued,
		Status:      StatusPending,
	}
}

// IsRetryable reports whether the submission may be resubmitted for its
// current stage after a failure, bounded by maxAttempts.
func (s *Submission) IsRetryable(maxAttempts int) bool {
	return s.Status == StatusFailed && s.AttemptCount < maxAttempts
}

// CanBeClaimed reports whether a worker may atomically take ownership.
func (s *Submission) CanBeClaimed() bool {
	return s.Status == StatusPending
}

// AdvanceStage moves the submission to the next pipeline stage and resets
// per-stage claim/attempt bookkeeping.
func (s *Submission) AdvanceStage(next SubmissionStage) {
	s.Stage = next
	s.Status = StatusPending
	s.ClaimedBy = ""
	s.ClaimExpiresAt = nil
	s.AttemptCount = 0
	s.LastError = ""
}

// MarkIndexed finalizes a submission that reached the terminal stage.
func (s *Submission) MarkIndexed() {
	s.Stage = StageIndexed
	s.Status = StatusCompleted
	now := time.Now()
	s.CompletedAt = &now
}

// MarkFailed records a terminal failure for the current stage attempt.
func (s *Submission) MarkFailed(err error) {
	s.Status = StatusFailed
	s.AttemptCount++
	if err != nil {
		s.LastError = err.Error()
	}
}

// MarkCancelled finalizes a submission whose cancellation was observed at
// a stage boundary, never preempting work already in flight for the
// current stage attempt.
func (s *Submission) MarkCancelled() {
	s.Stage = StageCancelled
	s.Status = StatusCancelled
	s.ClaimedBy = ""
	s.ClaimExpiresAt = nil
	now := time.Now()
	s.CompletedAt = &now
}
