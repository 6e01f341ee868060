package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PipelineJobKind identifies which stage worker a job belongs to.
type PipelineJobKind string

const (
	JobKindDownload    PipelineJobKind = "download"
	JobKindTranscribe  PipelineJobKind = "transcribe"
	JobKindChunk       PipelineJobKind = "chunk"
	JobKindEmbed       PipelineJobKind = "embed"
	JobKindIndex       PipelineJobKind = "index"
)

// PipelineJobStatus mirrors SubmissionStatus but scoped to one stage's unit
// of work, so a submission's history across stages remains queryable.
type PipelineJobStatus string

const (
	JobStatusPending    PipelineJobStatus = "pending"
	JobStatusClaimed    PipelineJobStatus = "claimed"
	JobStatusRunning    PipelineJobStatus = "running"
	JobStatusSucceeded  PipelineJobStatus = "succeeded"
	JobStatusFailed     PipelineJobStatus = "failed"
	JobStatusDead       PipelineJobStatus = "dead"
)

// PipelineJob is one attempt to move a submission through a single pipeline
// stage. The scheduler claims jobs atomically and workers execute them.
type PipelineJob struct {
	ID             uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubmissionID   uuid.UUID                          `json:"submission_id" gorm:"type:uuid;not null;index"`
	Kind           PipelineJobKind                    `json:"kind" gorm:"type:varchar(32);not null;index"`
	Status         PipelineJobStatus                  `json:"status" gorm:"type:varchar(32);not null;index"`
	Payload        datatypes.JSONType[map[string]any] `json:"payload,omitempty" gorm:"type:jsonb;serializer:json"`
	ClaimedBy      string                              `json:"claimed_by,omitempty" gorm:"type:varchar(255)"`
	ClaimExpiresAt *time.Time                          `json:"claim_expires_at,omitempty"`
	AttemptCount   int                                 `json:"attempt_count" gorm:"default:0"`
	MaxAttempts    int                                 `json:"max_attempts" gorm:"default:3"`
	LastError      string                              `json:"last_error,omitempty" gorm:"type:text"`
	RunAfter       time.Time                           `json:"run_after"`
	CreatedAt      time.Time                           `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time                           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM.
func (PipelineJob) TableName() string {
	return "pipeline_jobs"
}

// NewPipelineJob builds a job ready to be picked up on its next tick.
func NewPipelineJob(submissionID uuid.UUID, kind PipelineJobKind, maxAttempts int) *PipelineJob {
	return &PipelineJob{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		Kind:         kind,
		Status:       JobStatusPending,
		MaxAttempts:  maxAttempts,
		RunAfter:     time.Now(),
	}
}

// IsRetryable reports whether a failed job may be resubmitted.
func (j *PipelineJob) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.AttemptCount < j.MaxAttempts
}

// NextBackoff computes the delay before the job's next attempt using
// exponential backoff capped at 60 seconds, mirroring the worker pool's
// job-retry helper.
func (j *PipelineJob) NextBackoff() time.Duration {
	backoff := time.Duration(1<<uint(j.AttemptCount)) * 5 * time.Second
	if backoff > 60*time.Second {
		backoff = 60 * time.Second
	}
	return backoff
}
