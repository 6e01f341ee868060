package entities

import (
	"time"

	"github.com/google/uuid"
)

// AudioArtifact records the downloaded/uploaded audio file backing a
// submission, stored under the artifact store's filesystem layout.
type AudioArtifact struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubmissionID uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;index"`
	RelativePath string    `json:"relative_path" gorm:"type:text;not null"`
	Title        string    `json:"title,omitempty" gorm:"type:text"`
	DurationSecs float64   `json:"duration_secs"`
	SizeBytes    int64     `json:"size_bytes"`
	MimeType     string    `json:"mime_type,omitempty" gorm:"type:varchar(100)"`
	Checksum     string    `json:"checksum" gorm:"type:varchar(64);index"`
	MirroredAt   *time.Time `json:"mirrored_at,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (AudioArtifact) TableName() string {
	return "audio_artifacts"
}

// NewAudioArtifact builds an artifact record for a freshly downloaded file.
func NewAudioArtifact(submissionID uuid.UUID, relPath, checksum string, sizeBytes int64) *AudioArtifact {
	return &AudioArtifact{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		RelativePath: relPath,
		Checksum:     checksum,
		SizeBytes:    sizeBytes,
	}
}
