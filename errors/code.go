package errors

// ErrorCode is a stable, machine-readable identifier for an AppError,
// distinct from its HTTP status and human-readable message so clients can
// switch on failure kind without string matching.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_NOT_FOUND
	ErrorCode_UNAUTHENTICATED

	// ErrorCode_INPUT_INVALID marks a submission whose source cannot be
	// processed at all, never worth retrying.
	ErrorCode_INPUT_INVALID

	// ErrorCode_TRANSIENT_NETWORK marks a failure reaching an external
	// dependency (downloader, ASR provider) that is expected to recover on
	// retry.
	ErrorCode_TRANSIENT_NETWORK

	// ErrorCode_TRANSIENT_RESOURCE marks a failure in a resource this
	// process owns (vector store, database) that is expected to recover on
	// retry.
	ErrorCode_TRANSIENT_RESOURCE

	// ErrorCode_MODEL_FAILURE marks a failed call to an embedding, rerank,
	// or LLM model, retriable once before the attempt budget is charged.
	ErrorCode_MODEL_FAILURE

	// ErrorCode_BACKPRESSURE marks a submission rejected because the
	// pipeline is at its concurrency ceiling.
	ErrorCode_BACKPRESSURE

	// ErrorCode_CORRUPT_ARTIFACT marks an upstream-stage artifact that
	// cannot be read back, naming the stage that produced it.
	ErrorCode_CORRUPT_ARTIFACT

	// ErrorCode_CANCELLED marks a submission that was cancelled by request.
	ErrorCode_CANCELLED

	// ErrorCode_DUPLICATE_SOURCE tags a submission resolved to an existing,
	// already-in-flight or completed submission rather than a fresh one.
	ErrorCode_DUPLICATE_SOURCE
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:            "HTTP_OK",
	ErrorCode_INTERNAL:           "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:   "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:    "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:          "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:    "UNAUTHENTICATED",
	ErrorCode_INPUT_INVALID:      "INPUT_INVALID",
	ErrorCode_TRANSIENT_NETWORK:  "TRANSIENT_NETWORK",
	ErrorCode_TRANSIENT_RESOURCE: "TRANSIENT_RESOURCE",
	ErrorCode_MODEL_FAILURE:      "MODEL_FAILURE",
	ErrorCode_BACKPRESSURE:       "BACKPRESSURE",
	ErrorCode_CORRUPT_ARTIFACT:   "CORRUPT_ARTIFACT",
	ErrorCode_CANCELLED:          "CANCELLED",
	ErrorCode_DUPLICATE_SOURCE:   "DUPLICATE_SOURCE",
}

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
