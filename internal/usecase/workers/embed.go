package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/johnquangdev/yt-rag-engine/errors"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/embedding"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/vectorstore"
)

// EmbedWorker embeds a submission's unembedded chunks in batches and writes
// the resulting vectors into the local vector store. Batches within one
// submission are embedded concurrently over a bounded goroutine pool so a
// submission with thousands of chunks doesn't serialize behind the
// embedding provider's per-request latency.
type EmbedWorker struct {
	submissions repositories.SubmissionRepository
	chunks      repositories.ChunkRepository
	embedder    *embedding.Client
	vectors     *vectorstore.Store
	batchSize   int
	pool        *ants.Pool
}

// NewEmbedWorker constructs the embed stage worker. concurrency bounds how
// many chunk batches are embedded in parallel for a single submission.
func NewEmbedWorker(
	submissions repositories.SubmissionRepository,
	chunks repositories.ChunkRepository,
	embedder *embedding.Client,
	vectors *vectorstore.Store,
	batchSize int,
	concurrency int,
) *EmbedWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	pool, _ := ants.NewPool(concurrency)
	return &EmbedWorker{
		submissions: submissions,
		chunks:      chunks,
		embedder:    embedder,
		vectors:     vectors,
		batchSize:   batchSize,
		pool:        pool,
	}
}

// Stage identifies this worker's pipeline stage.
func (w *EmbedWorker) Stage() entities.SubmissionStage {
	return entities.StageEmbedding
}

// Process embeds every chunk belonging to the submission, in fixed-size
// batches, and advances to indexed once all are written.
func (w *EmbedWorker) Process(ctx context.Context, submission *entities.Submission) error {
	all, err := w.chunks.ListBySubmissionID(ctx, submission.ID)
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}

	var pending []*entities.Chunk
	for _, c := range all {
		if !c.Embedded {
			pending = append(pending, c)
		}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(pending); start += w.batchSize {
		end := start + w.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}

			vectors, err := w.embedder.EmbedBatch(ctx, texts)
			if err != nil {
				fail(errors.ErrModelFailure(err))
				return
			}

			ids := make([]string, len(batch))
			for i, c := range batch {
				if err := w.vectors.Upsert(c.ID, submission.ID.String(), vectors[i]); err != nil {
					fail(errors.ErrTransientResource("vector store", err))
					return
				}
				ids[i] = c.ID
			}
			if err := w.chunks.MarkEmbedded(ctx, ids); err != nil {
				fail(fmt.Errorf("failed to mark chunks embedded: %w", err))
			}
		}
		if err := w.pool.Submit(task); err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to schedule embed batch: %w", err))
		}
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	if err := w.submissions.CompleteStage(ctx, submission.ID, submission.ClaimedBy, entities.StageIndexed); err != nil {
		return fmt.Errorf("failed to advance submission to indexed: %w", err)
	}
	return nil
}
