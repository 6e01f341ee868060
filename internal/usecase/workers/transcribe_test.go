package workers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

func TestWebhookHandler_Complete_AdvancesToChunkingWhenTranscriptHasText(t *testing.T) {
	submissionID := uuid.New()
	pending := &entities.Transcript{SubmissionID: submissionID, ExternalJobID: "job-1"}
	transcripts := &fakeTranscriptRepo{transcript: pending}
	submissions := &fakeSubmissionRepo{byID: &entities.Submission{ID: submissionID, ClaimedBy: "worker-1"}}

	h := NewWebhookHandler(submissions, transcripts)
	filled := &entities.Transcript{Text: "hello world", Language: "en"}

	require.NoError(t, h.Complete(context.Background(), "job-1", filled))

	assert.Equal(t, "hello world", transcripts.updated.Text)
	assert.Equal(t, entities.StageChunking, submissions.completedStage)
	assert.Equal(t, submissionID, submissions.completedID)
}

func TestWebhookHandler_Complete_AdvancesToChunkingWhenTranscriptIsEmpty(t *testing.T) {
	submissionID := uuid.New()
	pending := &entities.Transcript{SubmissionID: submissionID, ExternalJobID: "job-1"}
	transcripts := &fakeTranscriptRepo{transcript: pending}
	submissions := &fakeSubmissionRepo{byID: &entities.Submission{ID: submissionID, ClaimedBy: "worker-1"}}

	h := NewWebhookHandler(submissions, transcripts)
	filled := &entities.Transcript{Text: "", Segments: nil}

	require.NoError(t, h.Complete(context.Background(), "job-1", filled))

	assert.Equal(t, submissionID, submissions.completedID)
	assert.Equal(t, entities.StageChunking, submissions.completedStage)
	assert.Empty(t, submissions.failedID, "an empty transcript defers no-content handling to the chunk worker rather than failing here")
}
