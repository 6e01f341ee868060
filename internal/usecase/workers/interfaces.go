package workers

import (
	"context"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
)

// StageWorker executes the unit of work for one submission at its current
// pipeline stage, returning the entity error taxonomy so the scheduler can
// tell retryable failures from terminal ones.
type StageWorker interface {
	Stage() entities.SubmissionStage
	Process(ctx context.Context, submission *entities.Submission) error
}
