package entities

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackRating is the coarse thumbs-up/thumbs-down signal collected from
// the chat-bot answer surface.
type FeedbackRating string

const (
	RatingPositive FeedbackRating = "positive"
	RatingNegative FeedbackRating = "negative"
)

// FeedbackEvent links a rating back to the query it was given for.
type FeedbackEvent struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	QueryID     uuid.UUID      `json:"query_id" gorm:"type:uuid;not null;index"`
	Rating      FeedbackRating `json:"rating" gorm:"type:varchar(16);not null"`
	Comment     string         `json:"comment,omitempty" gorm:"type:text"`
	SubmittedBy string         `json:"submitted_by,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (FeedbackEvent) TableName() string {
	return "feedback_events"
}

// NewFeedbackEvent builds a feedback record for a previously logged query.
func NewFeedbackEvent(queryID uuid.UUID, rating FeedbackRating, submittedBy string) *FeedbackEvent {
	return &FeedbackEvent{
		ID:          uuid.New(),
		QueryID:     queryID,
		Rating:      rating,
		SubmittedBy: submittedBy,
	}
}
