package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptSegment is a contiguous span of transcribed speech.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Speaker    string  `json:"speaker,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Transcript is the full text produced by the speech-recognition adapter
// for one submission's audio artifact.
type Transcript struct {
	ID              uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubmissionID    uuid.UUID                          `json:"submission_id" gorm:"type:uuid;not null;index"`
	Text            string                             `json:"text" gorm:"type:text"`
	Language        string                             `json:"language,omitempty" gorm:"type:varchar(20)"`
	Segments        []TranscriptSegment                `json:"segments,omitempty" gorm:"type:jsonb;serializer:json"`
	ConfidenceScore float64                             `json:"confidence_score,omitempty"`
	ModelUsed       string                              `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	ExternalJobID   string                              `json:"external_job_id,omitempty" gorm:"type:varchar(255);index"`
	RawData         datatypes.JSONType[map[string]any] `json:"raw_data,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time                          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM.
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript creates an empty transcript record awaiting ASR results.
func NewTranscript(submissionID uuid.UUID) *Transcript {
	return &Transcript{
		ID:           uuid.New(),
		SubmissionID: submissionID,
	}
}

// IsEmpty reports whether the transcript carries no usable text, the
// boundary case a chunker must handle without producing chunks.
func (t *Transcript) IsEmpty() bool {
	return len(t.Segments) == 0 && t.Text == ""
}
