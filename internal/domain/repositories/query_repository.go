package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// QueryRepository persists query/answer history for evaluation and audit.
type QueryRepository interface {
	Create(ctx context.Context, q *entities.QueryEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.QueryEvent, error)
	ListRecent(ctx context.Context, since time.Time, limit int) ([]*entities.QueryEvent, error)
}

// FeedbackRepository persists thumbs-up/thumbs-down ratings on answers.
type FeedbackRepository interface {
	Create(ctx context.Context, f *entities.FeedbackEvent) error
	ListByQueryID(ctx context.Context, queryID uuid.UUID) ([]*entities.FeedbackEvent, error)
	CountByRating(ctx context.Context, since time.Time) (map[entities.FeedbackRating]int64, error)
}

// AlertRepository persists and dispatches system health alerts.
type AlertRepository interface {
	Create(ctx context.Context, a *entities.SystemAlert) error
	ListUndispatched(ctx context.Context) ([]*entities.SystemAlert, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
	RecentCountByKind(ctx context.Context, kind entities.AlertKind, since time.Time) (int64, error)
}

// UserPreferenceRepository persists per-chat-user retrieval defaults.
type UserPreferenceRepository interface {
	GetOrCreate(ctx context.Context, chatID string) (*entities.UserPreference, error)
	Update(ctx context.Context, p *entities.UserPreference) error
}
