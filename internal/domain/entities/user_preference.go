package entities

import "time"

// UserPreference stores per-chat-user retrieval preferences: preferred
// language, default result count, and default retrieval variant, plus
// whether that user wants a notification when a submission finishes
// indexing.
type UserPreference struct {
	ChatID           string    `json:"chat_id" gorm:"type:varchar(255);primary_key"`
	PreferredLang    string    `json:"preferred_lang,omitempty" gorm:"type:varchar(20)"`
	DefaultTopK      int       `json:"default_top_k" gorm:"default:5"`
	DefaultVariant   string    `json:"default_variant" gorm:"type:varchar(16);default:'hybrid'"`
	NotifyOnComplete bool      `json:"notify_on_complete" gorm:"default:true"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM.
func (UserPreference) TableName() string {
	return "user_preferences"
}

// NewUserPreference builds a preference row with pipeline defaults.
func NewUserPreference(chatID string) *UserPreference {
	return &UserPreference{
		ChatID:           chatID,
		DefaultTopK:      5,
		DefaultVariant:   "hybrid",
		NotifyOnComplete: true,
	}
}
