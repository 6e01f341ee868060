package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the application's error type: a stable code and HTTP status
// alongside the underlying cause, so handlers and worker retry logic can
// both act on failure kind without string matching.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Retriable bool
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

// Pipeline taxonomy errors: the kinds a submission actually fails with as
// it moves through download, transcription, chunking, and embedding.

// ErrInputInvalid marks a submission whose source can never be processed,
// such as an unrecognized source kind. Never worth retrying.
func ErrInputInvalid(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INPUT_INVALID,
		Message:  message,
	}
}

// ErrTransientNetwork wraps a failure reaching an external dependency
// (the downloader, the ASR provider) that is expected to recover on retry.
func ErrTransientNetwork(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadGateway,
		Code:      ErrorCode_TRANSIENT_NETWORK,
		Message:   "Upstream network call failed",
		Retriable: true,
	}
}

// ErrTransientResource wraps a failure in a resource this process owns
// (the vector store, the database) that is expected to recover on retry.
func ErrTransientResource(resource string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusServiceUnavailable,
		Code:      ErrorCode_TRANSIENT_RESOURCE,
		Message:   fmt.Sprintf("%s temporarily unavailable", resource),
		Retriable: true,
	}.WithDetail("resource", resource)
}

// ErrModelFailure wraps a failed call to an embedding, rerank, or LLM
// model. Retriable once: the scheduler's attempt budget still applies on
// top of this.
func ErrModelFailure(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadGateway,
		Code:      ErrorCode_MODEL_FAILURE,
		Message:   "Model call failed",
		Retriable: true,
	}
}

// ErrBackpressure signals that the pipeline is at its concurrency ceiling
// and cannot admit new work right now.
func ErrBackpressure() AppError {
	return AppError{
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_BACKPRESSURE,
		Message:  "rejected-backpressure: pipeline is at capacity",
	}
}

// ErrCorruptArtifact marks an upstream-stage artifact that cannot be read
// back, naming the stage that produced it. Not worth retrying: the
// artifact itself is bad, not the read.
func ErrCorruptArtifact(stage string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_CORRUPT_ARTIFACT,
		Message:  fmt.Sprintf("corrupt artifact from %s stage", stage),
	}.WithDetail("stage", stage)
}

// ErrCancelled marks a submission that reached its terminal state because
// it was cancelled rather than because it finished or failed.
func ErrCancelled() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_CANCELLED,
		Message:  "submission is cancelled",
	}
}

// ErrDuplicateSource tags a submission resolved to an existing source
// rather than newly enqueued. Its HTTP code is 200: a duplicate hit is not
// itself an error, only a fact worth surfacing to the caller.
func ErrDuplicateSource() AppError {
	return AppError{
		HTTPCode: http.StatusOK,
		Code:     ErrorCode_DUPLICATE_SOURCE,
		Message:  "duplicate-source",
	}
}
