package handler

import (
	"crypto/sha256"
	"encoding/hex"
	stdErrors "errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/errors"
	dto "github.com/johnquangdev/yt-rag-engine/internal/adapter/dto/submission"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
)

// dedupWindow bounds how recently the same URL must have been submitted to
// be treated as a duplicate rather than a fresh re-ingestion request.
const dedupWindow = 24 * time.Hour

// SubmissionHandler exposes the ingestion intake API: submit a YouTube URL,
// inspect a submission's pipeline progress, cancel it, or list recent
// submissions.
type SubmissionHandler struct {
	submissions   repositories.SubmissionRepository
	highWaterMark int
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewSubmissionHandler creates a new submission handler. highWaterMark
// caps how many submissions may be active at once before Create starts
// rejecting new work with backpressure; zero or negative disables the gate.
func NewSubmissionHandler(submissions repositories.SubmissionRepository, highWaterMark int, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions:   submissions,
		highWaterMark: highWaterMark,
		validate:      validator.New(),
		logger:        logger,
	}
}

// Create enqueues a YouTube URL for ingestion.
// @Summary      Submit a YouTube URL for ingestion
// @Tags         Submissions
// @Accept       json
// @Produce      json
// @Param        request  body      submission.CreateSubmissionRequest  true  "URL to ingest"
// @Success      202      {object}  submission.SubmissionResponse
// @Router       /submissions [post]
func (h *SubmissionHandler) Create(c echo.Context) error {
	var req dto.CreateSubmissionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := h.validate.Struct(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	ctx := c.Request().Context()
	sum := sha256.Sum256([]byte(req.URL))
	hash := hex.EncodeToString(sum[:])

	if existing, err := h.submissions.FindRecentByHash(ctx, hash, dedupWindow); err == nil && existing != nil {
		c.Response().Header().Set("X-Result-Tag", errors.ErrDuplicateSource().Code.String())
		return HandleSuccess(h.logger, c, dto.FromEntity(existing))
	}

	if h.highWaterMark > 0 {
		active, err := h.submissions.CountActive(ctx)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInternal(err))
		}
		if active >= int64(h.highWaterMark) {
			return HandleError(h.logger, c, errors.ErrBackpressure())
		}
	}

	requestedBy := Requester(c)
	sub := entities.NewSubmission(entities.SourceYouTubeURL, req.URL, hash, requestedBy)
	if err := h.submissions.Create(ctx, sub); err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	return c.JSON(202, dto.FromEntity(sub))
}

// Get returns one submission's current pipeline status.
// @Summary      Get submission status
// @Tags         Submissions
// @Produce      json
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  submission.SubmissionResponse
// @Router       /submissions/{id} [get]
func (h *SubmissionHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid submission id"))
	}

	sub, err := h.submissions.GetByID(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrNotFound("submission"))
	}
	return HandleSuccess(h.logger, c, dto.FromEntity(sub))
}

// Cancel flags a submission for cancellation. The submission's owning
// stage worker observes the flag at its next stage boundary and drives the
// terminal transition; cancellation is never applied mid-stage.
// @Summary      Cancel a submission
// @Tags         Submissions
// @Produce      json
// @Param        id   path      string  true  "Submission ID"
// @Success      202  {object}  submission.SubmissionResponse
// @Router       /submissions/{id}/cancel [post]
func (h *SubmissionHandler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid submission id"))
	}

	ctx := c.Request().Context()
	if err := h.submissions.RequestCancel(ctx, id); err != nil {
		if stdErrors.Is(err, entities.ErrSubmissionNotClaimable) {
			return HandleError(h.logger, c, errors.ErrCancelled().WithDetail("reason", "submission already reached a terminal stage"))
		}
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	sub, err := h.submissions.GetByID(ctx, id)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrNotFound("submission"))
	}
	return c.JSON(202, dto.FromEntity(sub))
}

// List returns recent submissions, optionally filtered by status.
// @Summary      List submissions
// @Tags         Submissions
// @Produce      json
// @Success      200  {object}  []submission.SubmissionResponse
// @Router       /submissions [get]
func (h *SubmissionHandler) List(c echo.Context) error {
	var req dto.ListSubmissionsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	status := entities.StatusPending
	if req.Status != "" {
		status = entities.SubmissionStatus(req.Status)
	}

	subs, err := h.submissions.ListByStatus(c.Request().Context(), status, req.Limit)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	out := make([]dto.SubmissionResponse, len(subs))
	for i, s := range subs {
		out[i] = dto.FromEntity(s)
	}
	return HandleSuccess(h.logger, c, out)
}
