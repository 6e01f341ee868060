package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/errors"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/asr"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/workers"
)

// asrWebhookPayload is the subset of AssemblyAI's webhook body this handler
// cares about; the full transcript is fetched separately since the
// callback itself only carries the job id and terminal status.
type asrWebhookPayload struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

// ASRWebhookHandler receives transcription-complete callbacks from the
// speech-recognition provider and hands them to the pipeline's stage
// completion logic.
type ASRWebhookHandler struct {
	asrClient     *asr.Client
	webhooks      *workers.WebhookHandler
	webhookSecret string
	logger        *zap.Logger
}

// NewASRWebhookHandler creates a new ASR webhook handler.
func NewASRWebhookHandler(asrClient *asr.Client, webhooks *workers.WebhookHandler, webhookSecret string, logger *zap.Logger) *ASRWebhookHandler {
	return &ASRWebhookHandler{
		asrClient:     asrClient,
		webhooks:      webhooks,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// Handle processes one transcription-complete callback.
// @Summary      ASR webhook callback
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200
// @Router       /webhooks/asr [post]
func (h *ASRWebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	if h.webhookSecret != "" {
		signature := c.Request().Header.Get("X-Webhook-Signature")
		if !validSignature(h.webhookSecret, body, signature) {
			return HandleError(h.logger, c, errors.ErrUnauthenticated())
		}
	}

	var payload asrWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if payload.TranscriptID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing transcript_id"))
	}

	if payload.Status != "completed" && payload.Status != "error" {
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ignored"})
	}

	ctx := c.Request().Context()
	transcript, err := h.asrClient.FetchCompleted(ctx, payload.TranscriptID)
	if err != nil {
		h.logger.Error("failed to fetch completed transcript", zap.String("job_id", payload.TranscriptID), zap.Error(err))
		return HandleError(h.logger, c, errors.ErrModelFailure(err))
	}
	transcript.ExternalJobID = payload.TranscriptID

	if err := h.webhooks.Complete(ctx, payload.TranscriptID, transcript); err != nil {
		h.logger.Error("failed to complete transcription stage", zap.String("job_id", payload.TranscriptID), zap.Error(err))
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
}

func validSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
