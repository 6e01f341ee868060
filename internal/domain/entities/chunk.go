package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chunk is a fixed-window slice of a transcript, the unit indexed for
// retrieval. Chunk IDs are content-addressed on (submission, ordinal) so
// re-chunking a submission is idempotent.
type Chunk struct {
	ID           string    `json:"id" gorm:"type:varchar(64);primary_key"`
	SubmissionID uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;index"`
	Ordinal      int       `json:"ordinal" gorm:"not null"`
	Text         string    `json:"text" gorm:"type:text;not null"`
	StartSecs    float64   `json:"start_secs"`
	EndSecs      float64   `json:"end_secs"`
	CharCount    int       `json:"char_count"`
	Embedded     bool      `json:"embedded" gorm:"default:false;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (Chunk) TableName() string {
	return "chunks"
}

// ChunkID deterministically derives a chunk's identity from its submission
// and position, so repeated chunking runs upsert instead of duplicating.
func ChunkID(submissionID uuid.UUID, ordinal int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", submissionID.String(), ordinal)))
	return hex.EncodeToString(h[:])[:32]
}

// NewChunk builds a chunk with its derived content-addressed ID.
func NewChunk(submissionID uuid.UUID, ordinal int, text string, startSecs, endSecs float64) *Chunk {
	return &Chunk{
		ID:           ChunkID(submissionID, ordinal),
		SubmissionID: submissionID,
		Ordinal:      ordinal,
		Text:         text,
		StartSecs:    startSecs,
		EndSecs:      endSecs,
	}
}

// Embedding is the vector representation of a chunk, stored in the embedded
// vector store rather than in the relational job store.
type Embedding struct {
	ChunkID   string    `json:"chunk_id"`
	Vector    []float32 `json:"vector"`
	Model     string    `json:"model"`
	Dim       int       `json:"dim"`
	CreatedAt time.Time `json:"created_at"`
}
