package entities

import "errors"

// Domain errors shared across usecases and adapters.
var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrSubmissionDuplicate = errors.New("submission already ingested within dedup window")
	ErrSubmissionNotClaimable = errors.New("submission is not in a claimable state")

	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrTranscriptEmpty    = errors.New("transcript has no usable text")

	ErrChunkNotFound = errors.New("chunk not found")

	ErrJobNotFound     = errors.New("pipeline job not found")
	ErrJobNotClaimable = errors.New("pipeline job is not in a claimable state")
	ErrJobExhausted    = errors.New("pipeline job exhausted its retry budget")

	ErrQueryEmpty = errors.New("query text is empty")

	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
)
