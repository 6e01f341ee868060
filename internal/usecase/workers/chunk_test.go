package workers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

type fakeSubmissionRepo struct {
	completedStage entities.SubmissionStage
	completedID    uuid.UUID
	failedID       uuid.UUID
	failedErr      error
	warning        string
	byID           *entities.Submission
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, s *entities.Submission) error { return nil }
func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Submission, error) {
	return f.byID, nil
}
func (f *fakeSubmissionRepo) FindRecentByHash(ctx context.Context, hash string, within time.Duration) (*entities.Submission, error) {
	return nil, nil
}
func (f *fakeSubmissionRepo) ClaimNext(ctx context.Context, stage entities.SubmissionStage, workerID string, lease time.Duration) (*entities.Submission, error) {
	return nil, nil
}
func (f *fakeSubmissionRepo) CompleteStage(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage) error {
	f.completedID = id
	f.completedStage = next
	return nil
}
func (f *fakeSubmissionRepo) CompleteStageWithWarning(ctx context.Context, id uuid.UUID, workerID string, next entities.SubmissionStage, warning string) error {
	f.completedID = id
	f.completedStage = next
	f.warning = warning
	return nil
}
func (f *fakeSubmissionRepo) FailStage(ctx context.Context, id uuid.UUID, workerID string, err error) error {
	f.failedID = id
	f.failedErr = err
	return nil
}
func (f *fakeSubmissionRepo) SweepExpiredClaims(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeSubmissionRepo) Requeue(ctx context.Context, id uuid.UUID) error        { return nil }
func (f *fakeSubmissionRepo) MarkDead(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *fakeSubmissionRepo) PromoteQueued(ctx context.Context, limit int) (int64, error) {
	return 0, nil
}
func (f *fakeSubmissionRepo) RequestCancel(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeSubmissionRepo) CancelStage(ctx context.Context, id uuid.UUID, workerID string) (bool, error) {
	return false, nil
}
func (f *fakeSubmissionRepo) CountActive(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeSubmissionRepo) ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]*entities.Submission, error) {
	return nil, nil
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

type fakeTranscriptRepo struct {
	transcript *entities.Transcript
	updated    *entities.Transcript
}

func (f *fakeTranscriptRepo) Create(ctx context.Context, t *entities.Transcript) error { return nil }
func (f *fakeTranscriptRepo) Update(ctx context.Context, t *entities.Transcript) error {
	f.updated = t
	return nil
}
func (f *fakeTranscriptRepo) GetBySubmissionID(ctx context.Context, id uuid.UUID) (*entities.Transcript, error) {
	return f.transcript, nil
}
func (f *fakeTranscriptRepo) GetByExternalJobID(ctx context.Context, jobID string) (*entities.Transcript, error) {
	return f.transcript, nil
}

type fakeChunkRepo struct {
	upserted []*entities.Chunk
}

func (f *fakeChunkRepo) UpsertBatch(ctx context.Context, chunks []*entities.Chunk) error {
	f.upserted = append(f.upserted, chunks...)
	return nil
}
func (f *fakeChunkRepo) ListBySubmissionID(ctx context.Context, id uuid.UUID) ([]*entities.Chunk, error) {
	return f.upserted, nil
}
func (f *fakeChunkRepo) ListUnembedded(ctx context.Context, limit int) ([]*entities.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) MarkEmbedded(ctx context.Context, ids []string) error { return nil }
func (f *fakeChunkRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) DeleteBySubmissionID(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeChunkRepo) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*entities.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) CountAll(ctx context.Context) (int64, error) { return int64(len(f.upserted)), nil }

func TestChunkWorker_Process_ProducesOverlappingCharacterWindows(t *testing.T) {
	submission := &entities.Submission{ID: uuid.New()}
	transcript := &entities.Transcript{
		SubmissionID: submission.ID,
		Segments: []entities.TranscriptSegment{
			{Start: 0, End: 5, Text: "the quick brown fox"},
		},
	}

	transcripts := &fakeTranscriptRepo{transcript: transcript}
	chunks := &fakeChunkRepo{}
	submissions := &fakeSubmissionRepo{}

	w := NewChunkWorker(submissions, transcripts, chunks, 10, 2)
	err := w.Process(context.Background(), submission)
	require.NoError(t, err)

	require.Len(t, chunks.upserted, 3)
	assert.Equal(t, "the quick ", chunks.upserted[0].Text)
	assert.Equal(t, "ick brown ", chunks.upserted[1].Text)
	assert.Equal(t, "own fox", chunks.upserted[2].Text)
	assert.Equal(t, entities.StageEmbedding, submissions.completedStage)
	assert.Equal(t, submission.ID, submissions.completedID)

	for i, c := range chunks.upserted {
		assert.Equal(t, i, c.Ordinal)
		assert.Equal(t, entities.ChunkID(submission.ID, i), c.ID)
		assert.Equal(t, len(c.Text), c.CharCount)
	}
}

func TestChunkWorker_Process_IsIdempotent(t *testing.T) {
	submission := &entities.Submission{ID: uuid.New()}
	transcript := &entities.Transcript{
		SubmissionID: submission.ID,
		Text:         "alpha beta gamma delta epsilon zeta eta theta",
	}

	w := NewChunkWorker(&fakeSubmissionRepo{}, &fakeTranscriptRepo{transcript: transcript}, &fakeChunkRepo{}, 12, 3)

	first := &fakeChunkRepo{}
	w.chunks = first
	require.NoError(t, w.Process(context.Background(), submission))

	second := &fakeChunkRepo{}
	w.chunks = second
	require.NoError(t, w.Process(context.Background(), submission))

	require.NotEmpty(t, first.upserted)
	require.Equal(t, len(first.upserted), len(second.upserted))
	for i := range first.upserted {
		assert.Equal(t, first.upserted[i].ID, second.upserted[i].ID)
		assert.Equal(t, first.upserted[i].Text, second.upserted[i].Text)
	}
}

func TestChunkWorker_Process_EmptyTranscriptReachesIndexedWithWarning(t *testing.T) {
	submission := &entities.Submission{ID: uuid.New()}
	transcript := &entities.Transcript{SubmissionID: submission.ID}

	chunks := &fakeChunkRepo{}
	submissions := &fakeSubmissionRepo{}
	w := NewChunkWorker(submissions, &fakeTranscriptRepo{transcript: transcript}, chunks, 300, 75)
	err := w.Process(context.Background(), submission)

	require.NoError(t, err)
	assert.Empty(t, chunks.upserted)
	assert.Equal(t, entities.StageIndexed, submissions.completedStage)
	assert.Equal(t, submission.ID, submissions.completedID)
	assert.Contains(t, submissions.warning, "no-content")
}
