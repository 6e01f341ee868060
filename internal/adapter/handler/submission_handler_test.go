package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

type fakeSubmissionRepo struct {
	created      []*entities.Submission
	byHash       map[string]*entities.Submission
	byID         map[uuid.UUID]*entities.Submission
	byStatus     map[entities.SubmissionStatus][]*entities.Submission
	active       int64
	cancelErr    error
	cancelledIDs []uuid.UUID
	listedStatus entities.SubmissionStatus
	listedLimit  int
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, s *entities.Submission) error {
	f.created = append(f.created, s)
	return nil
}
func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Submission, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, assert.AnError
	}
	return s, nil
}
func (f *fakeSubmissionRepo) FindRecentByHash(ctx context.Context, hash string, within time.Duration) (*entities.Submission, error) {
	return f.byHash[hash], nil
}
func (f *fakeSubmissionRepo) ClaimNext(ctx context.Context, stage entities.SubmissionStage, workerID string, lease time.Duration) (*entities.Submission, error) {
	return nil, nil
}
func (f *fakeSubmissionRepo) CompleteStage(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage) error {
	return nil
}
func (f *fakeSubmissionRepo) CompleteStageWithWarning(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage, warning string) error {
	return nil
}
func (f *fakeSubmissionRepo) FailStage(ctx context.Context, id uuid.UUID, workerID string, err error) error {
	return nil
}
func (f *fakeSubmissionRepo) SweepExpiredClaims(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeSubmissionRepo) Requeue(ctx context.Context, id uuid.UUID) error        { return nil }
func (f *fakeSubmissionRepo) MarkDead(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *fakeSubmissionRepo) PromoteQueued(ctx context.Context, limit int) (int64, error) {
	return 0, nil
}
func (f *fakeSubmissionRepo) RequestCancel(ctx context.Context, id uuid.UUID) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelledIDs = append(f.cancelledIDs, id)
	return nil
}
func (f *fakeSubmissionRepo) CancelStage(ctx context.Context, id uuid.UUID, workerID string) (bool, error) {
	return false, nil
}
func (f *fakeSubmissionRepo) CountActive(ctx context.Context) (int64, error) { return f.active, nil }
func (f *fakeSubmissionRepo) ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]*entities.Submission, error) {
	f.listedStatus = status
	f.listedLimit = limit
	return f.byStatus[status], nil
}
func (f *fakeSubmissionRepo) CountByStage(ctx context.Context, stage entities.SubmissionStage) (int64, error) {
	return 0, nil
}
func (f *fakeSubmissionRepo) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeSubmissionRepo) CountTotalSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func TestSubmissionHandler_Create_EnqueuesNewURL(t *testing.T) {
	submissions := &fakeSubmissionRepo{byHash: map[string]*entities.Submission{}}
	h := NewSubmissionHandler(submissions, 0, nil)

	c, rec := newTestEcho(http.MethodPost, "/submissions", `{"url":"https://youtube.com/watch?v=abc123"}`)
	c.Request().Header.Set("X-Requested-By", "user-1")

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, submissions.created, 1)
	assert.Equal(t, "https://youtube.com/watch?v=abc123", submissions.created[0].SourceURL)
	assert.Equal(t, "user-1", submissions.created[0].RequestedBy)
}

func TestSubmissionHandler_Create_ReturnsExistingSubmissionOnDuplicateURL(t *testing.T) {
	url := "https://youtube.com/watch?v=dup"
	sum := sha256.Sum256([]byte(url))
	hash := hex.EncodeToString(sum[:])

	existing := entities.NewSubmission(entities.SourceYouTubeURL, url, hash, "user-1")
	submissions := &fakeSubmissionRepo{byHash: map[string]*entities.Submission{hash: existing}}
	h := NewSubmissionHandler(submissions, 0, nil)

	c, rec := newTestEcho(http.MethodPost, "/submissions", `{"url":"`+url+`"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusOK, rec.Code, "duplicate URL returns the existing submission via HandleSuccess")
	assert.Empty(t, submissions.created, "a duplicate should not enqueue a new submission")
}

func TestSubmissionHandler_Create_RejectsInvalidURL(t *testing.T) {
	h := NewSubmissionHandler(&fakeSubmissionRepo{}, 0, nil)
	c, rec := newTestEcho(http.MethodPost, "/submissions", `{"url":"not-a-url"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmissionHandler_Get_ReturnsMatchingSubmission(t *testing.T) {
	sub := entities.NewSubmission(entities.SourceYouTubeURL, "https://youtube.com/watch?v=x", "h", "user-1")
	submissions := &fakeSubmissionRepo{byID: map[uuid.UUID]*entities.Submission{sub.ID: sub}}
	h := NewSubmissionHandler(submissions, 0, nil)

	c, rec := newTestEcho(http.MethodGet, "/submissions/"+sub.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(sub.ID.String())

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmissionHandler_Get_RejectsMalformedID(t *testing.T) {
	h := NewSubmissionHandler(&fakeSubmissionRepo{}, 0, nil)
	c, rec := newTestEcho(http.MethodGet, "/submissions/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmissionHandler_Get_ReturnsNotFoundForUnknownID(t *testing.T) {
	h := NewSubmissionHandler(&fakeSubmissionRepo{byID: map[uuid.UUID]*entities.Submission{}}, 0, nil)
	c, rec := newTestEcho(http.MethodGet, "/submissions/"+uuid.New().String(), "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmissionHandler_List_DefaultsToPendingStatusAndLimit(t *testing.T) {
	sub := entities.NewSubmission(entities.SourceYouTubeURL, "https://youtube.com/watch?v=y", "h2", "user-1")
	submissions := &fakeSubmissionRepo{byStatus: map[entities.SubmissionStatus][]*entities.Submission{
		entities.StatusPending: {sub},
	}}
	h := NewSubmissionHandler(submissions, 0, nil)

	c, rec := newTestEcho(http.MethodGet, "/submissions", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.StatusPending, submissions.listedStatus)
	assert.Equal(t, 50, submissions.listedLimit)
}

func TestSubmissionHandler_Create_RejectsWithBackpressureAtHighWaterMark(t *testing.T) {
	submissions := &fakeSubmissionRepo{byHash: map[string]*entities.Submission{}, active: 2}
	h := NewSubmissionHandler(submissions, 2, nil)

	c, rec := newTestEcho(http.MethodPost, "/submissions", `{"url":"https://youtube.com/watch?v=full"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, submissions.created, "a submission at capacity should not enqueue new work")
}

func TestSubmissionHandler_Create_AllowsBelowHighWaterMark(t *testing.T) {
	submissions := &fakeSubmissionRepo{byHash: map[string]*entities.Submission{}, active: 1}
	h := NewSubmissionHandler(submissions, 2, nil)

	c, rec := newTestEcho(http.MethodPost, "/submissions", `{"url":"https://youtube.com/watch?v=room"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, submissions.created, 1)
}

func TestSubmissionHandler_Create_TagsDuplicateSourceOnDedupHit(t *testing.T) {
	url := "https://youtube.com/watch?v=dup2"
	sum := sha256.Sum256([]byte(url))
	hash := hex.EncodeToString(sum[:])
	existing := entities.NewSubmission(entities.SourceYouTubeURL, url, hash, "user-1")
	submissions := &fakeSubmissionRepo{byHash: map[string]*entities.Submission{hash: existing}}
	h := NewSubmissionHandler(submissions, 0, nil)

	c, rec := newTestEcho(http.MethodPost, "/submissions", `{"url":"`+url+`"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Result-Tag"))
}

func TestSubmissionHandler_Cancel_FlagsSubmissionAndReturnsIt(t *testing.T) {
	sub := entities.NewSubmission(entities.SourceYouTubeURL, "https://youtube.com/watch?v=cancel", "h3", "user-1")
	submissions := &fakeSubmissionRepo{byID: map[uuid.UUID]*entities.Submission{sub.ID: sub}}
	h := NewSubmissionHandler(submissions, 0, nil)

	c, rec := newTestEcho(http.MethodPost, "/submissions/"+sub.ID.String()+"/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues(sub.ID.String())

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, submissions.cancelledIDs, sub.ID)
}

func TestSubmissionHandler_Cancel_RejectsAlreadyTerminalSubmission(t *testing.T) {
	sub := entities.NewSubmission(entities.SourceYouTubeURL, "https://youtube.com/watch?v=term", "h4", "user-1")
	submissions := &fakeSubmissionRepo{
		byID:      map[uuid.UUID]*entities.Submission{sub.ID: sub},
		cancelErr: entities.ErrSubmissionNotClaimable,
	}
	h := NewSubmissionHandler(submissions, 0, nil)

	c, rec := newTestEcho(http.MethodPost, "/submissions/"+sub.ID.String()+"/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues(sub.ID.String())

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmissionHandler_Cancel_RejectsMalformedID(t *testing.T) {
	h := NewSubmissionHandler(&fakeSubmissionRepo{}, 0, nil)
	c, rec := newTestEcho(http.MethodPost, "/submissions/not-a-uuid/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
