package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	ts := httptest.NewServer(handler)
	c := NewClient(&config.LLMConfig{APIKey: "key", Model: "llama-3.1-70b-versatile", BaseURL: ts.URL})
	return c, ts.Close
}

func TestComplete_SendsMessagesAndReturnsAssistantContentVerbatim(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "what is a goroutine", req.Messages[0].Content)
		assert.Equal(t, "llama-3.1-70b-versatile", req.Model)

		w.Write([]byte(`{"choices":[{"message":{"content":"I cannot answer that."}}]}`))
	})
	defer closeFn()

	out, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "what is a goroutine"}}, 0.2, 500)
	require.NoError(t, err)
	assert.Equal(t, "I cannot answer that.", out, "refusal detection is a caller concern, not the client's")
}

func TestComplete_PropagatesProviderErrorStatus(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer closeFn()

	_, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	assert.ErrorContains(t, err, "503")
}

func TestComplete_RejectsEmptyChoices(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	defer closeFn()

	_, err := c.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, 0, 0)
	assert.ErrorContains(t, err, "empty response")
}
