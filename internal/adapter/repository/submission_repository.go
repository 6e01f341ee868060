package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// SubmissionRepository handles submission persistence, including the
// atomic claim/complete/fail state machine the scheduler drives.
type SubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *entities.Submission) error {
	if s == nil {
		return errors.New("submission cannot be nil")
	}
	return r.db.WithContext(ctx).Create(s).Error
}

// GetByID retrieves a submission by id.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Submission, error) {
	var s entities.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindRecentByHash returns the most recent submission with the given
// source hash created within the dedup window, or nil if there is none.
func (r *SubmissionRepository) FindRecentByHash(ctx context.Context, hash string, within time.Duration) (*entities.Submission, error) {
	var s entities.Submission
	cutoff := time.Now().Add(-within)
	err := r.db.WithContext(ctx).
		Where("source_hash = ? AND created_at >= ?", hash, cutoff).
		Order("created_at DESC").
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ClaimNext atomically claims one pending submission at the given stage.
// It first selects a candidate, then performs a conditional UPDATE guarded
// by the same predicate and checks RowsAffected to detect a race against
// another worker, retrying against the next candidate if lost.
func (r *SubmissionRepository) ClaimNext(ctx context.Context, stage entities.SubmissionStage, workerID string, leaseDuration time.Duration) (*entities.Submission, error) {
	var candidates []entities.Submission
	if err := r.db.WithContext(ctx).
		Where("stage = ? AND status = ?", stage, entities.StatusPending).
		Order("created_at ASC").
		Limit(10).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	expiry := now.Add(leaseDuration)
	for _, c := range candidates {
		result := r.db.WithContext(ctx).
			Model(&entities.Submission{}).
			Where("id = ? AND status = ?", c.ID, entities.StatusPending).
			Updates(map[string]interface{}{
				"status":           entities.StatusInProgress,
				"claimed_by":       workerID,
				"claim_expires_at": expiry,
				"updated_at":       now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			continue // lost the race to another worker, try next candidate
		}
		claimed := c
		claimed.Status = entities.StatusInProgress
		claimed.ClaimedBy = workerID
		claimed.ClaimExpiresAt = &expiry
		return &claimed, nil
	}
	return nil, nil
}

// CompleteStage advances a claimed submission to the next stage. The
// update is guarded by claimed_by so only the owning worker can complete it.
func (r *SubmissionRepository) CompleteStage(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage) error {
	now := time.Now()
	updates := map[string]interface{}{
		"stage":            next,
		"status":           entities.StatusPending,
		"claimed_by":       "",
		"claim_expires_at": nil,
		"attempt_count":    0,
		"last_error":       "",
		"updated_at":       now,
	}
	if next == entities.StageIndexed {
		updates["status"] = entities.StatusCompleted
		updates["completed_at"] = now
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND claimed_by = ?", id, workerID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrSubmissionNotClaimable
	}
	return nil
}

// CompleteStageWithWarning advances a claimed submission to the next stage
// like CompleteStage, but records warning against last_error instead of
// clearing it, surfacing a benign anomaly on an otherwise successful run.
func (r *SubmissionRepository) CompleteStageWithWarning(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage, warning string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"stage":            next,
		"status":           entities.StatusPending,
		"claimed_by":       "",
		"claim_expires_at": nil,
		"attempt_count":    0,
		"last_error":       warning,
		"updated_at":       now,
	}
	if next == entities.StageIndexed {
		updates["status"] = entities.StatusCompleted
		updates["completed_at"] = now
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND claimed_by = ?", id, workerID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrSubmissionNotClaimable
	}
	return nil
}

// FailStage records a failed attempt against the claim the caller holds.
func (r *SubmissionRepository) FailStage(ctx context.Context, id uuid.UUID, workerID string, execErr error) error {
	now := time.Now()
	msg := ""
	if execErr != nil {
		msg = execErr.Error()
	}
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND claimed_by = ?", id, workerID).
		Updates(map[string]interface{}{
			"status":           entities.StatusFailed,
			"attempt_count":    gorm.Expr("attempt_count + 1"),
			"last_error":       msg,
			"claimed_by":       "",
			"claim_expires_at": nil,
			"updated_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrSubmissionNotClaimable
	}
	return nil
}

// SweepExpiredClaims resets submissions whose lease has expired back to
// pending, recovering work orphaned by a crashed worker.
func (r *SubmissionRepository) SweepExpiredClaims(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("status = ? AND claim_expires_at IS NOT NULL AND claim_expires_at < ?", entities.StatusInProgress, time.Now()).
		Updates(map[string]interface{}{
			"status":           entities.StatusPending,
			"claimed_by":       "",
			"claim_expires_at": nil,
			"updated_at":       time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Requeue resets a failed-but-retryable submission back to pending at its
// current stage so the claim loop can pick it up again.
func (r *SubmissionRepository) Requeue(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND status = ?", id, entities.StatusFailed).
		Updates(map[string]interface{}{
			"status":     entities.StatusPending,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrSubmissionNotClaimable
	}
	return nil
}

// MarkDead terminates a submission that exhausted its retry budget.
func (r *SubmissionRepository) MarkDead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND status = ?", id, entities.StatusFailed).
		Updates(map[string]interface{}{
			"stage":      entities.StageFailed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrSubmissionNotClaimable
	}
	return nil
}

// RequestCancel flags a submission for cancellation, observed the next
// time its owning stage worker checks in at a stage boundary.
func (r *SubmissionRepository) RequestCancel(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND stage NOT IN ?", id, []entities.SubmissionStage{entities.StageIndexed, entities.StageFailed, entities.StageCancelled}).
		Updates(map[string]interface{}{
			"cancel_requested": true,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrSubmissionNotClaimable
	}
	return nil
}

// CancelStage moves a claimed, cancel-flagged submission to its terminal
// cancelled stage. The update is guarded by claimed_by and cancel_requested
// so it only fires for the worker holding the claim and only once the flag
// has actually been set.
func (r *SubmissionRepository) CancelStage(ctx context.Context, id uuid.UUID, workerID string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("id = ? AND claimed_by = ? AND cancel_requested = ?", id, workerID, true).
		Updates(map[string]interface{}{
			"stage":            entities.StageCancelled,
			"status":           entities.StatusCancelled,
			"claimed_by":       "",
			"claim_expires_at": nil,
			"completed_at":     now,
			"updated_at":       now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// PromoteQueued advances up to limit queued submissions into downloading,
// oldest first, guarding each update against a concurrent promotion.
func (r *SubmissionRepository) PromoteQueued(ctx context.Context, limit int) (int64, error) {
	var candidates []entities.Submission
	if err := r.db.WithContext(ctx).
		Where("stage = ? AND status = ?", entities.StageQueued, entities.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error; err != nil {
		return 0, err
	}

	var promoted int64
	for _, c := range candidates {
		result := r.db.WithContext(ctx).
			Model(&entities.Submission{}).
			Where("id = ? AND stage = ?", c.ID, entities.StageQueued).
			Updates(map[string]interface{}{
				"stage":      entities.StageDownloading,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return promoted, result.Error
		}
		promoted += result.RowsAffected
	}
	return promoted, nil
}

// CountActive counts submissions that have not reached a terminal stage.
func (r *SubmissionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Submission{}).
		Where("stage NOT IN ?", []entities.SubmissionStage{entities.StageIndexed, entities.StageFailed, entities.StageCancelled}).
		Count(&count).Error
	return count, err
}

// ListByStatus lists submissions with a given status, oldest first.
func (r *SubmissionRepository) ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]*entities.Submission, error) {
	var subs []*entities.Submission
	if limit == 0 {
		limit = 100
	}
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// CountByStage counts submissions currently sitting in a given stage.
func (r *SubmissionRepository) CountByStage(ctx context.Context, stage entities.SubmissionStage) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Submission{}).Where("stage = ?", stage).Count(&count).Error
	return count, err
}

// CountFailedSince counts terminal failures since a point in time.
func (r *SubmissionRepository) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Submission{}).
		Where("status = ? AND updated_at >= ?", entities.StatusFailed, since).Count(&count).Error
	return count, err
}

// CountTotalSince counts all submissions updated since a point in time,
// the denominator for the health sensor's failure-rate calculation.
func (r *SubmissionRepository) CountTotalSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Submission{}).
		Where("updated_at >= ?", since).Count(&count).Error
	return count, err
}
