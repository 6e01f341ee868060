package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/errors"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/storage"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/scheduler"
)

// statusStages lists the pipeline stages reported by the status endpoint,
// in the order a submission passes through them.
var statusStages = []entities.SubmissionStage{
	entities.StageQueued,
	entities.StageDownloading,
	entities.StageTranscribing,
	entities.StageChunking,
	entities.StageEmbedding,
	entities.StageIndexed,
	entities.StageFailed,
	entities.StageCancelled,
}

// StatusHandler reports operational health and pipeline status: the shallow
// liveness probe used by orchestrators, and a deeper snapshot of submission
// counts by stage, on-disk artifact size, and worker-pool state.
type StatusHandler struct {
	submissions repositories.SubmissionRepository
	chunks      repositories.ChunkRepository
	store       *storage.ArtifactStore
	pool        *scheduler.Scheduler
	logger      *zap.Logger
}

// NewStatusHandler constructs the status handler.
func NewStatusHandler(submissions repositories.SubmissionRepository, chunks repositories.ChunkRepository, store *storage.ArtifactStore, pool *scheduler.Scheduler, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		submissions: submissions,
		chunks:      chunks,
		store:       store,
		pool:        pool,
		logger:      logger,
	}
}

// Health reports basic liveness: whether the chunk collection is reachable
// and how many chunks it currently holds.
// @Summary      Liveness probe
// @Tags         Status
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *StatusHandler) Health(c echo.Context) error {
	size, err := h.collectionSize(c.Request().Context())
	ok := err == nil
	return c.JSON(200, map[string]interface{}{
		"ok":              ok,
		"collection_size": size,
	})
}

// Status reports pipeline depth by stage, on-disk artifact usage, and
// whether the worker pools are running.
// @Summary      Pipeline status
// @Tags         Status
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /status [get]
func (h *StatusHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	counts := make(map[string]int64, len(statusStages))
	for _, stage := range statusStages {
		n, err := h.submissions.CountByStage(ctx, stage)
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInternal(err))
		}
		counts[string(stage)] = n
	}

	collectionSize, err := h.collectionSize(ctx)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInternal(err))
	}

	var diskBytes int64
	if h.store != nil {
		diskBytes, err = h.store.DiskUsage()
		if err != nil {
			h.logger.Warn("failed to compute artifact disk usage", zap.Error(err))
		}
	}

	workerPool := map[string]interface{}{
		"running": false,
	}
	if h.pool != nil {
		workerPool["running"] = h.pool.Running()
		workerPool["concurrency"] = h.pool.Concurrency()
	}

	return c.JSON(200, map[string]interface{}{
		"stages": counts,
		"storage": map[string]interface{}{
			"collection_size": collectionSize,
			"artifact_bytes":  diskBytes,
		},
		"worker_pool": workerPool,
	})
}

func (h *StatusHandler) collectionSize(ctx context.Context) (int64, error) {
	return h.chunks.CountAll(ctx)
}
