package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// QueryRepository persists query/answer history.
type QueryRepository struct {
	db *gorm.DB
}

// NewQueryRepository creates a new query repository.
func NewQueryRepository(db *gorm.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// Create inserts a new query event.
func (r *QueryRepository) Create(ctx context.Context, q *entities.QueryEvent) error {
	if q == nil {
		return errors.New("query event cannot be nil")
	}
	return r.db.WithContext(ctx).Create(q).Error
}

// GetByID retrieves a query event by id.
func (r *QueryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.QueryEvent, error) {
	var q entities.QueryEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

// ListRecent lists query events since a point in time, newest first.
func (r *QueryRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*entities.QueryEvent, error) {
	var events []*entities.QueryEvent
	if limit == 0 {
		limit = 100
	}
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
