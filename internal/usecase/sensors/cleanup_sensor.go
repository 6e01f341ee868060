package sensors

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/storage"
)

// CleanupSensor reclaims local disk space by deleting the audio artifacts
// of submissions that finished indexing more than retention ago; the
// transcript and chunk text needed for retrieval already lives in the
// database, so the source audio is disposable once the pipeline is done
// with it. Mirrors the reference pipeline's size-triggered cleanup_sensor,
// but keyed on age instead of a raw directory-size threshold, since that
// threshold is already covered by the health sensor's storage-cap alert.
type CleanupSensor struct {
	submissions repositories.SubmissionRepository
	artifacts   repositories.AudioArtifactRepository
	store       *storage.ArtifactStore
	retention   time.Duration
	interval    time.Duration
	logger      *zap.Logger
}

// NewCleanupSensor constructs the artifact-retention sweep.
func NewCleanupSensor(
	submissions repositories.SubmissionRepository,
	artifacts repositories.AudioArtifactRepository,
	store *storage.ArtifactStore,
	retention, interval time.Duration,
	logger *zap.Logger,
) *CleanupSensor {
	return &CleanupSensor{submissions: submissions, artifacts: artifacts, store: store, retention: retention, interval: interval, logger: logger}
}

// Name identifies the sensor for logging.
func (s *CleanupSensor) Name() string { return "cleanup_sensor" }

// Interval reports how often the sensor ticks.
func (s *CleanupSensor) Interval() time.Duration { return s.interval }

// Tick deletes audio files belonging to old, fully-indexed submissions.
func (s *CleanupSensor) Tick(ctx context.Context) error {
	completed, err := s.submissions.ListByStatus(ctx, entities.StatusCompleted, 200)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-s.retention)
	var purged int
	for _, sub := range completed {
		if sub.CompletedAt == nil || sub.CompletedAt.After(cutoff) {
			continue
		}
		artifact, err := s.artifacts.GetBySubmissionID(ctx, sub.ID)
		if err != nil {
			continue
		}
		if err := s.store.Remove(artifact.RelativePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove aged audio artifact", zap.String("submission_id", sub.ID.String()), zap.Error(err))
			continue
		}
		purged++
	}
	if purged > 0 {
		s.logger.Info("purged aged audio artifacts", zap.Int("count", purged))
	}
	return nil
}
