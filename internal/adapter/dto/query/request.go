package query

// AskRequest represents a question submitted to the retrieval engine.
type AskRequest struct {
	Query   string `json:"query" validate:"required,min=1,max=2000"`
	Variant string `json:"variant" validate:"omitempty,oneof=semantic hybrid hybrid+rerank rewrite+hybrid+rerank"`
}

// FeedbackRequest represents a thumbs-up/thumbs-down rating on an answer.
type FeedbackRequest struct {
	QueryID string `json:"query_id" validate:"required,uuid"`
	Rating  string `json:"rating" validate:"required,oneof=positive negative"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}
