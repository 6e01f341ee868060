package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature_AcceptsCorrectHMAC(t *testing.T) {
	body := []byte(`{"transcript_id":"abc"}`)
	assert.True(t, validSignature("shh", body, sign("shh", body)))
}

func TestValidSignature_RejectsWrongSecret(t *testing.T) {
	body := []byte(`{"transcript_id":"abc"}`)
	assert.False(t, validSignature("shh", body, sign("other", body)))
}

func TestValidSignature_RejectsTamperedBody(t *testing.T) {
	body := []byte(`{"transcript_id":"abc"}`)
	sig := sign("shh", body)
	assert.False(t, validSignature("shh", []byte(`{"transcript_id":"xyz"}`), sig))
}

func TestASRWebhookHandler_Handle_RejectsBadSignature(t *testing.T) {
	h := NewASRWebhookHandler(nil, nil, "shh", nil)
	body := `{"transcript_id":"job-1","status":"completed"}`

	c, rec := newTestEcho(http.MethodPost, "/webhooks/asr", body)
	c.Request().Header.Set("X-Webhook-Signature", "not-the-right-signature")

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestASRWebhookHandler_Handle_AcceptsValidSignatureAndIgnoresInProgressStatus(t *testing.T) {
	h := NewASRWebhookHandler(nil, nil, "shh", nil)
	body := []byte(`{"transcript_id":"job-1","status":"processing"}`)

	c, rec := newTestEcho(http.MethodPost, "/webhooks/asr", string(body))
	c.Request().Header.Set("X-Webhook-Signature", sign("shh", body))

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestASRWebhookHandler_Handle_RejectsMissingTranscriptID(t *testing.T) {
	h := NewASRWebhookHandler(nil, nil, "", nil)
	c, rec := newTestEcho(http.MethodPost, "/webhooks/asr", `{"status":"completed"}`)

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestASRWebhookHandler_Handle_RejectsMalformedJSON(t *testing.T) {
	h := NewASRWebhookHandler(nil, nil, "", nil)
	c, rec := newTestEcho(http.MethodPost, "/webhooks/asr", `{not json`)

	require.NoError(t, h.Handle(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
