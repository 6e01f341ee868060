package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnquangdev/yt-rag-engine/errors"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
)

// ChunkWorker splits a completed transcript into fixed-size, overlapping
// character windows, the unit later embedded and indexed for retrieval.
type ChunkWorker struct {
	submissions repositories.SubmissionRepository
	transcripts repositories.TranscriptRepository
	chunks      repositories.ChunkRepository
	size        int
	overlap     int
}

// NewChunkWorker constructs the chunk stage worker.
func NewChunkWorker(
	submissions repositories.SubmissionRepository,
	transcripts repositories.TranscriptRepository,
	chunks repositories.ChunkRepository,
	size, overlap int,
) *ChunkWorker {
	return &ChunkWorker{
		submissions: submissions,
		transcripts: transcripts,
		chunks:      chunks,
		size:        size,
		overlap:     overlap,
	}
}

// Stage identifies this worker's pipeline stage.
func (w *ChunkWorker) Stage() entities.SubmissionStage {
	return entities.StageChunking
}

// textSpan tracks one transcript segment's position in the normalized,
// concatenated transcript text alongside its original timestamps, so a
// character window can be mapped back to the audio time it came from.
type textSpan struct {
	start, end         int
	startSecs, endSecs float64
}

// Process reads the submission's transcript, produces overlapping
// character-window chunks, upserts them by content-addressed id, and
// advances to embedding. A transcript with no usable text is not a
// failure: the submission still reaches indexed, with zero chunks and a
// no-content warning recorded against it.
func (w *ChunkWorker) Process(ctx context.Context, submission *entities.Submission) error {
	transcript, err := w.transcripts.GetBySubmissionID(ctx, submission.ID)
	if err != nil {
		return errors.ErrCorruptArtifact("transcribing", err)
	}

	text, spans := buildTranscriptText(transcript)
	if text == "" {
		if err := w.submissions.CompleteStageWithWarning(ctx, submission.ID, submission.ClaimedBy, entities.StageIndexed, "no-content: transcript had no usable text"); err != nil {
			return fmt.Errorf("failed to advance empty submission to indexed: %w", err)
		}
		return nil
	}

	step := w.size - 2*w.overlap
	if step <= 0 {
		step = w.size
	}

	var built []*entities.Chunk
	ordinal := 0
	for start := 0; start < len(text); start += step {
		end := start + w.size
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]
		startSecs, endSecs := windowTiming(spans, start, end)
		chunk := entities.NewChunk(submission.ID, ordinal, window, startSecs, endSecs)
		chunk.CharCount = len(window)
		built = append(built, chunk)
		ordinal++
		if end == len(text) {
			break
		}
	}

	if err := w.chunks.UpsertBatch(ctx, built); err != nil {
		return fmt.Errorf("failed to persist chunks: %w", err)
	}

	if err := w.submissions.CompleteStage(ctx, submission.ID, submission.ClaimedBy, entities.StageEmbedding); err != nil {
		return fmt.Errorf("failed to advance submission to embedding: %w", err)
	}
	return nil
}

// buildTranscriptText concatenates a transcript's segments into one
// normalized string, single-space separated, recording each segment's
// character span so window offsets can be mapped back to timestamps.
// Transcripts without segments (e.g. an uploaded transcript with no
// diarization) are treated as a single untimed span.
func buildTranscriptText(t *entities.Transcript) (string, []textSpan) {
	if len(t.Segments) == 0 {
		text := normalizeWhitespace(t.Text)
		if text == "" {
			return "", nil
		}
		return text, []textSpan{{start: 0, end: len(text)}}
	}

	var b strings.Builder
	spans := make([]textSpan, 0, len(t.Segments))
	for _, seg := range t.Segments {
		text := normalizeWhitespace(seg.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		start := b.Len()
		b.WriteString(text)
		spans = append(spans, textSpan{start: start, end: b.Len(), startSecs: seg.Start, endSecs: seg.End})
	}
	return b.String(), spans
}

// windowTiming finds the timestamp range covered by a character window,
// taken from the first and last segment spans it overlaps.
func windowTiming(spans []textSpan, start, end int) (float64, float64) {
	var startSecs, endSecs float64
	found := false
	for _, sp := range spans {
		if sp.end <= start || sp.start >= end {
			continue
		}
		if !found {
			startSecs = sp.startSecs
			found = true
		}
		endSecs = sp.endSecs
	}
	return startSecs, endSecs
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
