package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

type fakeChunkRepoForStatus struct {
	count    int64
	countErr error
}

func (f *fakeChunkRepoForStatus) UpsertBatch(ctx context.Context, chunks []*entities.Chunk) error {
	return nil
}
func (f *fakeChunkRepoForStatus) ListBySubmissionID(ctx context.Context, submissionID uuid.UUID) ([]*entities.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepoForStatus) ListUnembedded(ctx context.Context, limit int) ([]*entities.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepoForStatus) MarkEmbedded(ctx context.Context, chunkIDs []string) error {
	return nil
}
func (f *fakeChunkRepoForStatus) GetByIDs(ctx context.Context, ids []string) ([]*entities.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepoForStatus) DeleteBySubmissionID(ctx context.Context, submissionID uuid.UUID) error {
	return nil
}
func (f *fakeChunkRepoForStatus) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*entities.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepoForStatus) CountAll(ctx context.Context) (int64, error) {
	return f.count, f.countErr
}

func TestStatusHandler_Health_ReportsOkAndCollectionSize(t *testing.T) {
	submissions := &fakeSubmissionRepo{}
	chunks := &fakeChunkRepoForStatus{count: 42}
	h := NewStatusHandler(submissions, chunks, nil, nil, nil)

	c, rec := newTestEcho(http.MethodGet, "/health", "")
	require.NoError(t, h.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
	assert.Contains(t, rec.Body.String(), `"collection_size":42`)
}

func TestStatusHandler_Health_ReportsNotOkWhenCollectionUnreachable(t *testing.T) {
	submissions := &fakeSubmissionRepo{}
	chunks := &fakeChunkRepoForStatus{countErr: assert.AnError}
	h := NewStatusHandler(submissions, chunks, nil, nil, nil)

	c, rec := newTestEcho(http.MethodGet, "/health", "")
	require.NoError(t, h.Health(c))
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}

func TestStatusHandler_Status_ReportsStageCountsAndWorkerPool(t *testing.T) {
	submissions := &fakeSubmissionRepo{}
	chunks := &fakeChunkRepoForStatus{count: 7}
	h := NewStatusHandler(submissions, chunks, nil, nil, nil)

	c, rec := newTestEcho(http.MethodGet, "/status", "")
	require.NoError(t, h.Status(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stages"`)
	assert.Contains(t, rec.Body.String(), `"worker_pool"`)
	assert.Contains(t, rec.Body.String(), `"collection_size":7`)
}
