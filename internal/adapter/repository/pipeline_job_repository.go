package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// PipelineJobRepository handles per-stage job persistence and claiming.
type PipelineJobRepository struct {
	db *gorm.DB
}

// NewPipelineJobRepository creates a new pipeline job repository.
func NewPipelineJobRepository(db *gorm.DB) *PipelineJobRepository {
	return &PipelineJobRepository{db: db}
}

// Create inserts a new pipeline job.
func (r *PipelineJobRepository) Create(ctx context.Context, j *entities.PipelineJob) error {
	if j == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(j).Error
}

// GetByID retrieves a pipeline job by id.
func (r *PipelineJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PipelineJob, error) {
	var j entities.PipelineJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&j).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

// ClaimNext atomically claims the oldest due, pending job of a kind.
func (r *PipelineJobRepository) ClaimNext(ctx context.Context, kind entities.PipelineJobKind, workerID string, leaseDuration time.Duration) (*entities.PipelineJob, error) {
	var candidates []entities.PipelineJob
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND status = ? AND run_after <= ?", kind, entities.JobStatusPending, time.Now()).
		Order("created_at ASC").
		Limit(10).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	expiry := now.Add(leaseDuration)
	for _, c := range candidates {
		result := r.db.WithContext(ctx).
			Model(&entities.PipelineJob{}).
			Where("id = ? AND status = ?", c.ID, entities.JobStatusPending).
			Updates(map[string]interface{}{
				"status":           entities.JobStatusRunning,
				"claimed_by":       workerID,
				"claim_expires_at": expiry,
				"updated_at":       now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			continue
		}
		claimed := c
		claimed.Status = entities.JobStatusRunning
		claimed.ClaimedBy = workerID
		claimed.ClaimExpiresAt = &expiry
		return &claimed, nil
	}
	return nil, nil
}

// MarkSucceeded finalizes a running job as succeeded.
func (r *PipelineJobRepository) MarkSucceeded(ctx context.Context, id uuid.UUID, workerID string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.PipelineJob{}).
		Where("id = ? AND claimed_by = ?", id, workerID).
		Updates(map[string]interface{}{
			"status":           entities.JobStatusSucceeded,
			"claimed_by":       "",
			"claim_expires_at": nil,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrJobNotClaimable
	}
	return nil
}

// MarkFailed records a failed attempt and schedules the next retry.
func (r *PipelineJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, workerID string, execErr error, retryAfter time.Duration) error {
	msg := ""
	if execErr != nil {
		msg = execErr.Error()
	}
	result := r.db.WithContext(ctx).
		Model(&entities.PipelineJob{}).
		Where("id = ? AND claimed_by = ?", id, workerID).
		Updates(map[string]interface{}{
			"status":           entities.JobStatusPending,
			"attempt_count":    gorm.Expr("attempt_count + 1"),
			"last_error":       msg,
			"claimed_by":       "",
			"claim_expires_at": nil,
			"run_after":        time.Now().Add(retryAfter),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrJobNotClaimable
	}
	return nil
}

// MarkDead moves a job that exhausted its retry budget to the dead state.
func (r *PipelineJobRepository) MarkDead(ctx context.Context, id uuid.UUID, workerID string, execErr error) error {
	msg := ""
	if execErr != nil {
		msg = execErr.Error()
	}
	result := r.db.WithContext(ctx).
		Model(&entities.PipelineJob{}).
		Where("id = ? AND claimed_by = ?", id, workerID).
		Updates(map[string]interface{}{
			"status":           entities.JobStatusDead,
			"last_error":       msg,
			"claimed_by":       "",
			"claim_expires_at": nil,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrJobNotClaimable
	}
	return nil
}

// SweepExpiredClaims resets running jobs whose lease has expired.
func (r *PipelineJobRepository) SweepExpiredClaims(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.PipelineJob{}).
		Where("status = ? AND claim_expires_at IS NOT NULL AND claim_expires_at < ?", entities.JobStatusRunning, time.Now()).
		Updates(map[string]interface{}{
			"status":           entities.JobStatusPending,
			"claimed_by":       "",
			"claim_expires_at": nil,
			"updated_at":       time.Now(),
		})
	return result.RowsAffected, result.Error
}

// ListDead lists jobs that exhausted retries, for operator inspection.
func (r *PipelineJobRepository) ListDead(ctx context.Context, limit int) ([]*entities.PipelineJob, error) {
	var jobs []*entities.PipelineJob
	if limit == 0 {
		limit = 50
	}
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.JobStatusDead).
		Order("updated_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// CountPending counts pending jobs of a given kind, the scheduler's
// backlog signal per stage.
func (r *PipelineJobRepository) CountPending(ctx context.Context, kind entities.PipelineJobKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.PipelineJob{}).
		Where("kind = ? AND status = ?", kind, entities.JobStatusPending).Count(&count).Error
	return count, err
}

// CountAll counts all non-terminal jobs in the system.
func (r *PipelineJobRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.PipelineJob{}).
		Where("status NOT IN ?", []entities.PipelineJobStatus{entities.JobStatusSucceeded, entities.JobStatusDead}).
		Count(&count).Error
	return count, err
}
