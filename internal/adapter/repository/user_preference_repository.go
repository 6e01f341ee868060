package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// UserPreferenceRepository persists per-chat-user retrieval defaults.
type UserPreferenceRepository struct {
	db *gorm.DB
}

// NewUserPreferenceRepository creates a new user preference repository.
func NewUserPreferenceRepository(db *gorm.DB) *UserPreferenceRepository {
	return &UserPreferenceRepository{db: db}
}

// GetOrCreate fetches a chat user's preferences, creating defaults on
// first contact.
func (r *UserPreferenceRepository) GetOrCreate(ctx context.Context, chatID string) (*entities.UserPreference, error) {
	var p entities.UserPreference
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := entities.NewUserPreference(chatID)
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

// Update saves changes to a preference row.
func (r *UserPreferenceRepository) Update(ctx context.Context, p *entities.UserPreference) error {
	return r.db.WithContext(ctx).Model(&entities.UserPreference{}).Where("chat_id = ?", p.ChatID).Save(p).Error
}
