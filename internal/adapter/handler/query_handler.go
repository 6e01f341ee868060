package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/errors"
	dto "github.com/johnquangdev/yt-rag-engine/internal/adapter/dto/query"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/retrieval"
)

// QueryHandler exposes the retrieval engine over HTTP: ask a question, or
// leave feedback on a previously synthesized answer.
type QueryHandler struct {
	engine      *retrieval.Engine
	feedbacks   repositories.FeedbackRepository
	preferences repositories.UserPreferenceRepository
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(engine *retrieval.Engine, feedbacks repositories.FeedbackRepository, preferences repositories.UserPreferenceRepository, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		engine:      engine,
		feedbacks:   feedbacks,
		preferences: preferences,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Ask runs a question through the retrieval pipeline and returns a
// synthesized, source-grounded answer.
// @Summary      Ask a question
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      query.AskRequest  true  "Question"
// @Success      200      {object}  query.AnswerResponse
// @Router       /query [post]
func (h *QueryHandler) Ask(c echo.Context) error {
	var req dto.AskRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := h.validate.Struct(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	askedBy := Requester(c)

	variant := entities.VariantHybrid
	if req.Variant != "" {
		variant = entities.RetrievalVariant(req.Variant)
	} else if pref, err := h.preferences.GetOrCreate(c.Request().Context(), askedBy); err == nil && pref.DefaultVariant != "" {
		variant = entities.RetrievalVariant(pref.DefaultVariant)
	}

	answer, err := h.engine.Answer(c.Request().Context(), req.Query, askedBy, variant)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	return HandleSuccess(h.logger, c, dto.FromEngineAnswer(answer))
}

// Feedback records a thumbs-up/thumbs-down rating for a previously
// synthesized answer.
// @Summary      Rate an answer
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      query.FeedbackRequest  true  "Feedback"
// @Success      201
// @Router       /query/feedback [post]
func (h *QueryHandler) Feedback(c echo.Context) error {
	var req dto.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := h.validate.Struct(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	queryID, err := uuid.Parse(req.QueryID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid query id"))
	}

	submittedBy := Requester(c)
	feedback := entities.NewFeedbackEvent(queryID, entities.FeedbackRating(req.Rating), submittedBy)
	feedback.Comment = req.Comment

	if err := h.feedbacks.Create(c.Request().Context(), feedback); err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}
	return c.JSON(201, map[string]interface{}{"status": "recorded"})
}
