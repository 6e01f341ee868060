package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// PipelineJobRepository persists per-stage work items claimed by the
// scheduler's worker pool.
type PipelineJobRepository interface {
	Create(ctx context.Context, j *entities.PipelineJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PipelineJob, error)

	// ClaimNext atomically claims one due, pending job of the given kind.
	ClaimNext(ctx context.Context, kind entities.PipelineJobKind, workerID string, leaseDuration time.Duration) (*entities.PipelineJob, error)

	MarkSucceeded(ctx context.Context, id uuid.UUID, workerID string) error
	MarkFailed(ctx context.Context, id uuid.UUID, workerID string, err error, retryAfter time.Duration) error
	MarkDead(ctx context.Context, id uuid.UUID, workerID string, err error) error

	SweepExpiredClaims(ctx context.Context) (int64, error)
	ListDead(ctx context.Context, limit int) ([]*entities.PipelineJob, error)
	CountPending(ctx context.Context, kind entities.PipelineJobKind) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}
