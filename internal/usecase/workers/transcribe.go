package workers

import (
	"context"
	"fmt"

	"github.com/johnquangdev/yt-rag-engine/errors"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/asr"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/storage"
)

// TranscribeWorker submits a submission's audio to the speech-recognition
// provider and returns without advancing the pipeline stage: transcription
// is asynchronous, so the stage transition happens later, either when the
// provider's webhook lands (WebhookHandler) or when the timeout-recovery
// poll notices the job finished without a callback
// (Scheduler.recoverTimedOutTranscriptions).
// The submission's claim is deliberately held for the whole wait so either
// path can identify the worker that owns the completion.
type TranscribeWorker struct {
	submissions repositories.SubmissionRepository
	artifacts   repositories.AudioArtifactRepository
	transcripts repositories.TranscriptRepository
	store       *storage.ArtifactStore
	asrClient   *asr.Client
}

// NewTranscribeWorker constructs the transcribe stage worker.
func NewTranscribeWorker(
	submissions repositories.SubmissionRepository,
	artifacts repositories.AudioArtifactRepository,
	transcripts repositories.TranscriptRepository,
	store *storage.ArtifactStore,
	asrClient *asr.Client,
) *TranscribeWorker {
	return &TranscribeWorker{
		submissions: submissions,
		artifacts:   artifacts,
		transcripts: transcripts,
		store:       store,
		asrClient:   asrClient,
	}
}

// Stage identifies this worker's pipeline stage.
func (w *TranscribeWorker) Stage() entities.SubmissionStage {
	return entities.StageTranscribing
}

// Process submits the audio for transcription and records the pending
// transcript row; it does not complete the stage.
func (w *TranscribeWorker) Process(ctx context.Context, submission *entities.Submission) error {
	artifact, err := w.artifacts.GetBySubmissionID(ctx, submission.ID)
	if err != nil {
		return fmt.Errorf("failed to load audio artifact: %w", err)
	}

	result, err := w.asrClient.SubmitFile(ctx, w.store.AbsPath(artifact.RelativePath))
	if err != nil {
		return errors.ErrTransientResource("asr provider", err)
	}

	transcript := entities.NewTranscript(submission.ID)
	transcript.ExternalJobID = result.ExternalJobID
	if err := w.transcripts.Create(ctx, transcript); err != nil {
		return fmt.Errorf("failed to persist pending transcript: %w", err)
	}

	return nil
}

// WebhookHandler completes the transcribing stage when the ASR provider's
// callback delivers a finished transcript.
type WebhookHandler struct {
	submissions repositories.SubmissionRepository
	transcripts repositories.TranscriptRepository
}

// NewWebhookHandler constructs the ASR webhook completion handler.
func NewWebhookHandler(submissions repositories.SubmissionRepository, transcripts repositories.TranscriptRepository) *WebhookHandler {
	return &WebhookHandler{submissions: submissions, transcripts: transcripts}
}

// Complete stores the finished transcript body and advances the owning
// submission to chunking. An empty transcript is not treated as a failure
// here: it still reaches chunking, where the chunk worker recognizes the
// no-content case and lets the submission finish as indexed with zero
// chunks and a warning rather than dying mid-pipeline.
func (h *WebhookHandler) Complete(ctx context.Context, externalJobID string, filled *entities.Transcript) error {
	existing, err := h.transcripts.GetByExternalJobID(ctx, externalJobID)
	if err != nil {
		return fmt.Errorf("failed to find pending transcript: %w", err)
	}

	existing.Text = filled.Text
	existing.Language = filled.Language
	existing.Segments = filled.Segments
	existing.ConfidenceScore = filled.ConfidenceScore
	existing.ModelUsed = filled.ModelUsed
	if err := h.transcripts.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to persist completed transcript: %w", err)
	}

	submission, err := h.submissions.GetByID(ctx, existing.SubmissionID)
	if err != nil {
		return fmt.Errorf("failed to load owning submission: %w", err)
	}

	return h.submissions.CompleteStage(ctx, submission.ID, submission.ClaimedBy, entities.StageChunking)
}
