package embedding

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
	c := NewClient(&config.EmbeddingConfig{APIKey: "key", Model: "text-embedding-3-small", BaseURL: ts.URL, Dim: 3})
	return c, ts.Close
}

func TestEmbedBatch_PreservesInputOrderRegardlessOfResponseOrder(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"first", "second"}, req.Input)

		// Provider returns entries out of order; Index must be honored.
		w.Write([]byte(`{"data":[{"embedding":[0.2,0.2,0.2],"index":1},{"embedding":[0.1,0.1,0.1],"index":0}]}`))
	})
	defer closeFn()

	vecs, err := c.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0.1, 0.1, 0.1}, vecs[0])
	assert.Equal(t, []float32{0.2, 0.2, 0.2}, vecs[1])
}

func TestEmbedBatch_EmptyInputReturnsNilWithoutCallingProvider(t *testing.T) {
	called := false
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer closeFn()

	vecs, err := c.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.False(t, called)
}

func TestEmbedBatch_PropagatesProviderErrorStatus(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer closeFn()

	_, err := c.EmbedBatch(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "429")
}

func TestEmbedBatch_RejectsMismatchedVectorCount(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
	})
	defer closeFn()

	_, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "2 inputs")
}

func TestEmbedQuery_ReturnsSingleVector(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.5,0.5],"index":0}]}`))
	})
	defer closeFn()

	vec, err := c.EmbedQuery(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestDim_ReturnsConfiguredDimension(t *testing.T) {
	c := NewClient(&config.EmbeddingConfig{Dim: 1536})
	assert.Equal(t, 1536, c.Dim())
}
