package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// FeedbackRepository persists thumbs-up/thumbs-down ratings on answers.
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a new feedback event.
func (r *FeedbackRepository) Create(ctx context.Context, f *entities.FeedbackEvent) error {
	if f == nil {
		return errors.New("feedback event cannot be nil")
	}
	return r.db.WithContext(ctx).Create(f).Error
}

// ListByQueryID lists all feedback recorded against one query.
func (r *FeedbackRepository) ListByQueryID(ctx context.Context, queryID uuid.UUID) ([]*entities.FeedbackEvent, error) {
	var events []*entities.FeedbackEvent
	err := r.db.WithContext(ctx).Where("query_id = ?", queryID).Find(&events).Error
	return events, err
}

// CountByRating tallies ratings recorded since a point in time.
func (r *FeedbackRepository) CountByRating(ctx context.Context, since time.Time) (map[entities.FeedbackRating]int64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&entities.FeedbackEvent{}).
		Select("rating, count(*) as count").
		Where("created_at >= ?", since).
		Group("rating").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[entities.FeedbackRating]int64)
	for rows.Next() {
		var rating entities.FeedbackRating
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		result[rating] = count
	}
	return result, nil
}
