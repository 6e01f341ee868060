package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// AudioArtifactRepository handles audio-artifact bookkeeping rows; the
// bytes themselves live under the artifact store's filesystem layout.
type AudioArtifactRepository struct {
	db *gorm.DB
}

// NewAudioArtifactRepository creates a new audio artifact repository.
func NewAudioArtifactRepository(db *gorm.DB) *AudioArtifactRepository {
	return &AudioArtifactRepository{db: db}
}

// Create inserts a new artifact record.
func (r *AudioArtifactRepository) Create(ctx context.Context, a *entities.AudioArtifact) error {
	if a == nil {
		return errors.New("artifact cannot be nil")
	}
	return r.db.WithContext(ctx).Create(a).Error
}

// GetBySubmissionID fetches the artifact for a submission, if any.
func (r *AudioArtifactRepository) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*entities.AudioArtifact, error) {
	var a entities.AudioArtifact
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// MarkMirrored records that the artifact was successfully copied to the
// optional object-storage mirror.
func (r *AudioArtifactRepository) MarkMirrored(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.AudioArtifact{}).
		Where("id = ?", id).
		Update("mirrored_at", time.Now()).Error
}
