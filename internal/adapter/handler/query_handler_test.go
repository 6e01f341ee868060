package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

type fakeFeedbackRepo struct {
	created []*entities.FeedbackEvent
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, fb *entities.FeedbackEvent) error {
	f.created = append(f.created, fb)
	return nil
}
func (f *fakeFeedbackRepo) ListByQueryID(ctx context.Context, queryID uuid.UUID) ([]*entities.FeedbackEvent, error) {
	return nil, nil
}
func (f *fakeFeedbackRepo) CountByRating(ctx context.Context, since time.Time) (map[entities.FeedbackRating]int64, error) {
	return nil, nil
}

type fakePreferenceRepo struct{}

func (f *fakePreferenceRepo) GetOrCreate(ctx context.Context, chatID string) (*entities.UserPreference, error) {
	return &entities.UserPreference{ChatID: chatID, DefaultVariant: "hybrid"}, nil
}
func (f *fakePreferenceRepo) Update(ctx context.Context, p *entities.UserPreference) error { return nil }

func newTestEcho(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestQueryHandler_Ask_RejectsMalformedJSON(t *testing.T) {
	h := NewQueryHandler(nil, &fakeFeedbackRepo{}, &fakePreferenceRepo{}, nil)
	c, rec := newTestEcho(http.MethodPost, "/query", `{not json`)

	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_Ask_RejectsEmptyQuery(t *testing.T) {
	h := NewQueryHandler(nil, &fakeFeedbackRepo{}, &fakePreferenceRepo{}, nil)
	c, rec := newTestEcho(http.MethodPost, "/query", `{"query":""}`)

	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_Ask_RejectsUnknownVariant(t *testing.T) {
	h := NewQueryHandler(nil, &fakeFeedbackRepo{}, &fakePreferenceRepo{}, nil)
	c, rec := newTestEcho(http.MethodPost, "/query", `{"query":"what is a goroutine","variant":"telepathic"}`)

	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_Feedback_RecordsValidRating(t *testing.T) {
	feedbacks := &fakeFeedbackRepo{}
	h := NewQueryHandler(nil, feedbacks, &fakePreferenceRepo{}, nil)

	queryID := uuid.New()
	c, rec := newTestEcho(http.MethodPost, "/query/feedback", `{"query_id":"`+queryID.String()+`","rating":"positive"}`)
	c.Request().Header.Set("X-Requested-By", "user-42")

	require.NoError(t, h.Feedback(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, feedbacks.created, 1)
	assert.Equal(t, queryID, feedbacks.created[0].QueryID)
	assert.Equal(t, "user-42", feedbacks.created[0].SubmittedBy)
}

func TestQueryHandler_Feedback_RejectsInvalidQueryID(t *testing.T) {
	h := NewQueryHandler(nil, &fakeFeedbackRepo{}, &fakePreferenceRepo{}, nil)
	c, rec := newTestEcho(http.MethodPost, "/query/feedback", `{"query_id":"not-a-uuid","rating":"positive"}`)

	require.NoError(t, h.Feedback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_Feedback_RejectsUnknownRating(t *testing.T) {
	h := NewQueryHandler(nil, &fakeFeedbackRepo{}, &fakePreferenceRepo{}, nil)
	c, rec := newTestEcho(http.MethodPost, "/query/feedback", `{"query_id":"`+uuid.New().String()+`","rating":"meh"}`)

	require.NoError(t, h.Feedback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
