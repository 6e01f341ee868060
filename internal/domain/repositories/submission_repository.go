package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// SubmissionRepository persists submissions and implements the atomic
// claim/complete/fail lifecycle the scheduler drives workers through.
type SubmissionRepository interface {
	Create(ctx context.Context, s *entities.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Submission, error)
	FindRecentByHash(ctx context.Context, hash string, within time.Duration) (*entities.Submission, error)

	// ClaimNext atomically transitions one pending submission at the given
	// stage to in-progress, owned by workerID, returning nil, nil if none
	// are available.
	ClaimNext(ctx context.Context, stage entities.SubmissionStage, workerID string, leaseDuration time.Duration) (*entities.Submission, error)

	// CompleteStage performs a conditional update guarded by (id, ClaimedBy)
	// so a worker can only complete/fail the exact claim it holds.
	CompleteStage(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage) error

	// CompleteStageWithWarning behaves like CompleteStage but records a
	// non-fatal warning in last_error instead of clearing it, used when a
	// stage reaches its next stage despite a benign anomaly worth
	// surfacing, such as a transcript with no usable text.
	CompleteStageWithWarning(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage, warning string) error

	FailStage(ctx context.Context, id uuid.UUID, workerID string, err error) error

	// SweepExpiredClaims resets submissions whose claim lease has expired
	// back to pending, recovering from a crashed worker.
	SweepExpiredClaims(ctx context.Context) (int64, error)

	// Requeue resets a failed-but-retryable submission back to pending at
	// its current stage, for the retry sweep to pick up after backoff.
	Requeue(ctx context.Context, id uuid.UUID) error

	// MarkDead terminates a submission that exhausted its retry budget,
	// moving it to the terminal failed stage.
	MarkDead(ctx context.Context, id uuid.UUID) error

	// RequestCancel flags a submission for cancellation. It does not itself
	// change stage or status: the running stage worker completes its
	// current attempt, and the next stage-boundary check observes the flag
	// and drives the terminal transition.
	RequestCancel(ctx context.Context, id uuid.UUID) error

	// CancelStage transitions a claimed submission to the cancelled stage
	// if it was flagged via RequestCancel, guarded by the caller's claim.
	// Returns false without error if the flag was cleared or never set.
	CancelStage(ctx context.Context, id uuid.UUID, workerID string) (bool, error)

	// PromoteQueued advances up to limit queued submissions into the
	// downloading stage, oldest first, used by the ingestion sensor to
	// admit work under a global concurrency ceiling.
	PromoteQueued(ctx context.Context, limit int) (int64, error)

	// CountActive counts submissions not yet in a terminal stage, the
	// numerator the ingestion sensor checks against the task ceiling.
	CountActive(ctx context.Context) (int64, error)

	ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]*entities.Submission, error)
	CountByStage(ctx context.Context, stage entities.SubmissionStage) (int64, error)
	CountFailedSince(ctx context.Context, since time.Time) (int64, error)
	CountTotalSince(ctx context.Context, since time.Time) (int64, error)
}
