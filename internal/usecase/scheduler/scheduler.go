package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/cache"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/asr"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/workers"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

// Scheduler owns the pipeline's worker pools: one goroutine group per
// stage claiming and processing submissions, plus the background sweeps
// that recover crashed claims, retry failed stages after backoff, and
// resolve transcription jobs whose webhook never arrived.
type Scheduler struct {
	cfg         *config.PipelineConfig
	submissions repositories.SubmissionRepository
	transcripts repositories.TranscriptRepository
	jobs        repositories.PipelineJobRepository
	asrClient   *asr.Client
	webhooks    *workers.WebhookHandler
	cache       *cache.RedisClient
	logger      *zap.Logger

	download    *workers.DownloadWorker
	transcribe  *workers.TranscribeWorker
	chunk       *workers.ChunkWorker
	embed       *workers.EmbedWorker

	wg       sync.WaitGroup
	stopChan chan struct{}
	rootCtx  context.Context
	mu       sync.Mutex
	running  bool
}

// New builds a scheduler wired to its stage workers.
func New(
	cfg *config.PipelineConfig,
	submissions repositories.SubmissionRepository,
	transcripts repositories.TranscriptRepository,
	jobs repositories.PipelineJobRepository,
	asrClient *asr.Client,
	download *workers.DownloadWorker,
	transcribe *workers.TranscribeWorker,
	chunk *workers.ChunkWorker,
	embed *workers.EmbedWorker,
	redisClient *cache.RedisClient,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		submissions: submissions,
		transcripts: transcripts,
		jobs:        jobs,
		asrClient:   asrClient,
		webhooks:    workers.NewWebhookHandler(submissions, transcripts),
		cache:       redisClient,
		download:    download,
		transcribe:  transcribe,
		chunk:       chunk,
		embed:       embed,
		logger:      logger,
	}
}

// Start launches every stage's worker pool plus the sweep/retry/timeout
// goroutines. It returns immediately; call Stop to shut everything down.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errAlreadyRunning
	}
	s.running = true
	s.rootCtx = ctx
	s.stopChan = make(chan struct{})

	s.logger.Info("starting pipeline scheduler",
		zap.Int("download_concurrency", s.cfg.DownloadConcurrency),
		zap.Int("transcribe_concurrency", s.cfg.TranscribeConcurrency),
		zap.Int("chunk_concurrency", s.cfg.ChunkConcurrency),
		zap.Int("embed_concurrency", s.cfg.EmbedConcurrency),
	)

	runStagePool(ctx, s, s.download, s.cfg.DownloadConcurrency)
	runStagePool(ctx, s, s.transcribe, s.cfg.TranscribeConcurrency)
	runStagePool(ctx, s, s.chunk, s.cfg.ChunkConcurrency)
	runStagePool(ctx, s, s.embed, s.cfg.EmbedConcurrency)

	runPeriodic(s, s.cfg.ClaimLeaseDuration, s.sweepExpiredClaims)
	runPeriodic(s, s.cfg.TickInterval*10, s.retryFailedSubmissions)
	runPeriodic(s, asr.PollInterval, s.recoverTimedOutTranscriptions)

	return nil
}

// Running reports whether the worker pools are currently active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Concurrency reports the configured goroutine count per pipeline stage,
// used to report worker-pool status without exposing internal state.
func (s *Scheduler) Concurrency() map[entities.SubmissionStage]int {
	return map[entities.SubmissionStage]int{
		entities.StageDownloading:  s.cfg.DownloadConcurrency,
		entities.StageTranscribing: s.cfg.TranscribeConcurrency,
		entities.StageChunking:     s.cfg.ChunkConcurrency,
		entities.StageEmbedding:    s.cfg.EmbedConcurrency,
	}
}

// Stop signals every goroutine to exit and waits for them to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return errNotRunning
	}
	close(s.stopChan)
	s.wg.Wait()
	s.running = false
	s.logger.Info("pipeline scheduler stopped")
	return nil
}

// sweepExpiredClaims recovers submissions abandoned by a crashed worker.
func (s *Scheduler) sweepExpiredClaims(ctx context.Context) {
	n, err := s.submissions.SweepExpiredClaims(ctx)
	if err != nil {
		s.logger.Error("failed to sweep expired claims", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("recovered expired claims", zap.Int64("count", n))
		if s.cache != nil {
			if err := s.cache.IncrLeaseExpiry(ctx, n); err != nil {
				s.logger.Warn("failed to record lease expiry count", zap.Error(err))
			}
		}
	}
}

// retryFailedSubmissions requeues failed submissions still within their
// retry budget and marks the rest permanently dead.
func (s *Scheduler) retryFailedSubmissions(ctx context.Context) {
	failed, err := s.submissions.ListByStatus(ctx, entities.StatusFailed, 100)
	if err != nil {
		s.logger.Error("failed to list failed submissions", zap.Error(err))
		return
	}
	for _, sub := range failed {
		if sub.IsRetryable(s.cfg.MaxAttempts) {
			if err := s.submissions.Requeue(ctx, sub.ID); err != nil {
				s.logger.Warn("failed to requeue submission", zap.String("submission_id", sub.ID.String()), zap.Error(err))
			}
			continue
		}
		if err := s.submissions.MarkDead(ctx, sub.ID); err != nil {
			s.logger.Warn("failed to mark submission dead", zap.String("submission_id", sub.ID.String()), zap.Error(err))
		}
	}
}

// recoverTimedOutTranscriptions polls the ASR provider directly for
// transcribing submissions whose webhook never arrived, in case the
// callback was dropped or the endpoint was briefly unreachable.
func (s *Scheduler) recoverTimedOutTranscriptions(ctx context.Context) {
	pending, err := s.submissions.ListByStatus(ctx, entities.StatusInProgress, 50)
	if err != nil {
		s.logger.Error("failed to list in-progress submissions", zap.Error(err))
		return
	}
	for _, sub := range pending {
		if sub.Stage != entities.StageTranscribing {
			continue
		}
		transcript, err := s.transcripts.GetBySubmissionID(ctx, sub.ID)
		if err != nil || transcript.ExternalJobID == "" {
			continue
		}
		if !isStale(sub, s.cfg.ASRTimeout) {
			continue
		}

		status, err := s.asrClient.GetStatus(ctx, transcript.ExternalJobID)
		if err != nil {
			s.logger.Warn("failed to poll transcription status", zap.String("submission_id", sub.ID.String()), zap.Error(err))
			continue
		}
		if status != "completed" {
			continue
		}

		filled, err := s.asrClient.FetchCompleted(ctx, transcript.ExternalJobID)
		if err != nil {
			s.logger.Warn("failed to fetch completed transcript", zap.Error(err))
			continue
		}
		if err := s.webhooks.Complete(ctx, transcript.ExternalJobID, filled); err != nil {
			s.logger.Warn("failed to recover timed-out transcription", zap.Error(err))
		}
	}
}

func isStale(sub *entities.Submission, timeout time.Duration) bool {
	return sub.ClaimExpiresAt != nil && time.Now().After(sub.ClaimExpiresAt.Add(-timeout/2))
}
