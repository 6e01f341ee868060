package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// AlertRepository persists and tracks dispatch of system health alerts.
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, a *entities.SystemAlert) error {
	if a == nil {
		return errors.New("alert cannot be nil")
	}
	return r.db.WithContext(ctx).Create(a).Error
}

// ListUndispatched lists alerts awaiting delivery to the chat-bot channel.
func (r *AlertRepository) ListUndispatched(ctx context.Context) ([]*entities.SystemAlert, error) {
	var alerts []*entities.SystemAlert
	err := r.db.WithContext(ctx).
		Where("dispatched = ?", false).
		Order("created_at ASC").
		Find(&alerts).Error
	return alerts, err
}

// MarkDispatched flags an alert as delivered.
func (r *AlertRepository) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.SystemAlert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"dispatched":    true,
			"dispatched_at": time.Now(),
		}).Error
}

// RecentCountByKind counts alerts of a kind raised since a point in time,
// used to suppress duplicate lease-expiry-storm alerts within an hour.
func (r *AlertRepository) RecentCountByKind(ctx context.Context, kind entities.AlertKind, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.SystemAlert{}).
		Where("kind = ? AND created_at >= ?", kind, since).
		Count(&count).Error
	return count, err
}
