package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/yt-rag-engine/errors"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/workers"
)

// stageKind maps a pipeline stage to the job kind recorded for audit.
var stageKind = map[entities.SubmissionStage]entities.PipelineJobKind{
	entities.StageDownloading:  entities.JobKindDownload,
	entities.StageTranscribing: entities.JobKindTranscribe,
	entities.StageChunking:     entities.JobKindChunk,
	entities.StageEmbedding:    entities.JobKindEmbed,
}

// runStagePool starts n goroutines that repeatedly claim and process
// submissions at one pipeline stage until stopChan is closed.
func runStagePool(
	ctx context.Context,
	pool *Scheduler,
	worker workers.StageWorker,
	concurrency int,
) {
	stage := worker.Stage()
	kind, hasKind := stageKind[stage]

	for i := 0; i < concurrency; i++ {
		pool.wg.Add(1)
		workerID := fmt.Sprintf("%s-worker-%d", stage, i)
		go func(workerID string) {
			defer pool.wg.Done()
			ticker := time.NewTicker(pool.cfg.TickInterval)
			defer ticker.Stop()

			for {
				select {
				case <-pool.stopChan:
					return
				case <-ticker.C:
					submission, err := pool.submissions.ClaimNext(ctx, stage, workerID, pool.cfg.ClaimLeaseDuration)
					if err != nil {
						pool.logger.Error("failed to claim submission", zap.String("stage", string(stage)), zap.Error(err))
						continue
					}
					if submission == nil {
						continue
					}

					if submission.CancelRequested {
						cancelled, err := pool.submissions.CancelStage(ctx, submission.ID, workerID)
						if err != nil {
							pool.logger.Error("failed to cancel submission at stage boundary", zap.String("stage", string(stage)), zap.Error(err))
						} else if cancelled {
							pool.logger.Info("submission cancelled at stage boundary",
								zap.String("stage", string(stage)),
								zap.String("submission_id", submission.ID.String()),
							)
						}
						continue
					}

					var job *entities.PipelineJob
					if hasKind {
						job = entities.NewPipelineJob(submission.ID, kind, pool.cfg.MaxAttempts)
						if err := pool.jobs.Create(ctx, job); err != nil {
							pool.logger.Warn("failed to record pipeline job", zap.Error(err))
						}
					}

					if err := worker.Process(ctx, submission); err != nil {
						pool.logger.Warn("stage worker failed",
							zap.String("stage", string(stage)),
							zap.String("submission_id", submission.ID.String()),
							zap.Error(err),
						)
						if failErr := pool.submissions.FailStage(ctx, submission.ID, workerID, err); failErr != nil {
							pool.logger.Error("failed to record stage failure", zap.Error(failErr))
						}
						var appErr apperrors.AppError
						if stderrors.As(err, &appErr) && !appErr.Retriable {
							if deadErr := pool.submissions.MarkDead(ctx, submission.ID); deadErr != nil {
								pool.logger.Error("failed to mark non-retriable submission dead", zap.Error(deadErr))
							}
						}
						if job != nil {
							_ = pool.jobs.MarkFailed(ctx, job.ID, workerID, err, job.NextBackoff())
						}
						continue
					}

					if job != nil {
						_ = pool.jobs.MarkSucceeded(ctx, job.ID, workerID)
					}
				}
			}
		}(workerID)
	}
}

// runPeriodic runs fn on a fixed interval until stopChan is closed.
func runPeriodic(pool *Scheduler, interval time.Duration, fn func(ctx context.Context)) {
	pool.wg.Add(1)
	go func() {
		defer pool.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-pool.stopChan:
				return
			case <-ticker.C:
				fn(pool.rootCtx)
			}
		}
	}()
}
