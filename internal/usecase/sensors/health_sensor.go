package sensors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/cache"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

var backlogStages = []entities.SubmissionStage{
	entities.StageQueued,
	entities.StageDownloading,
	entities.StageTranscribing,
	entities.StageChunking,
	entities.StageEmbedding,
}

// HealthSensor periodically evaluates pipeline health signals — failure
// rate, backlog depth, lease-expiry storms, and storage usage — raising a
// SystemAlert whenever a configured threshold is crossed, mirroring the
// reference pipeline's pipeline_health_sensor.
type HealthSensor struct {
	submissions repositories.SubmissionRepository
	alerts      repositories.AlertRepository
	cache       *cache.RedisClient
	dataRoot    string
	cfg         *config.PipelineConfig
	interval    time.Duration
	logger      *zap.Logger
}

// NewHealthSensor constructs the pipeline health monitor.
func NewHealthSensor(
	submissions repositories.SubmissionRepository,
	alerts repositories.AlertRepository,
	redisClient *cache.RedisClient,
	dataRoot string,
	cfg *config.PipelineConfig,
	logger *zap.Logger,
) *HealthSensor {
	return &HealthSensor{
		submissions: submissions,
		alerts:      alerts,
		cache:       redisClient,
		dataRoot:    dataRoot,
		cfg:         cfg,
		interval:    cfg.HealthSensorInterval,
		logger:      logger,
	}
}

// Name identifies the sensor for logging.
func (s *HealthSensor) Name() string { return "health_sensor" }

// Interval reports how often the sensor ticks.
func (s *HealthSensor) Interval() time.Duration { return s.interval }

// Tick evaluates every health signal and raises alerts as needed.
func (s *HealthSensor) Tick(ctx context.Context) error {
	since := time.Now().Add(-s.interval * 6)

	if err := s.checkFailureRate(ctx, since); err != nil {
		s.logger.Warn("failure rate check failed", zap.Error(err))
	}
	if err := s.checkBacklog(ctx); err != nil {
		s.logger.Warn("backlog check failed", zap.Error(err))
	}
	if err := s.checkLeaseExpiry(ctx); err != nil {
		s.logger.Warn("lease expiry check failed", zap.Error(err))
	}
	if err := s.checkStorageCap(ctx); err != nil {
		s.logger.Warn("storage cap check failed", zap.Error(err))
	}
	return nil
}

func (s *HealthSensor) checkFailureRate(ctx context.Context, since time.Time) error {
	total, err := s.submissions.CountTotalSince(ctx, since)
	if err != nil || total == 0 {
		return err
	}
	failed, err := s.submissions.CountFailedSince(ctx, since)
	if err != nil {
		return err
	}
	rate := float64(failed) / float64(total)
	if rate <= s.cfg.FailureRateThreshold {
		return nil
	}
	return s.raiseOncePerWindow(ctx, entities.AlertHighFailureRate, entities.SeverityCritical,
		fmt.Sprintf("failure rate %.1f%% over the last %s (%d/%d submissions)", rate*100, since.Format(time.RFC3339), failed, total))
}

func (s *HealthSensor) checkBacklog(ctx context.Context) error {
	var total int64
	for _, stage := range backlogStages {
		count, err := s.submissions.CountByStage(ctx, stage)
		if err != nil {
			return err
		}
		total += count
		if s.cache != nil {
			_ = s.cache.SetBacklogSnapshot(ctx, string(stage), count)
		}
	}
	if int(total) <= s.cfg.BacklogThreshold {
		return nil
	}
	return s.raiseOncePerWindow(ctx, entities.AlertBacklogGrowing, entities.SeverityWarning,
		fmt.Sprintf("pipeline backlog at %d submissions, above threshold %d", total, s.cfg.BacklogThreshold))
}

func (s *HealthSensor) checkLeaseExpiry(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	count, err := s.cache.TakeLeaseExpiryCount(ctx)
	if err != nil || count == 0 {
		return err
	}
	perHour := float64(count) * time.Hour.Seconds() / s.interval.Seconds()
	if perHour <= float64(s.cfg.LeaseExpiryAlertPerHour) {
		return nil
	}
	return s.raiseOncePerWindow(ctx, entities.AlertLeaseExpiry, entities.SeverityCritical,
		fmt.Sprintf("recovered %d expired claims this tick, projecting %.0f/hour", count, perHour))
}

func (s *HealthSensor) checkStorageCap(ctx context.Context) error {
	if s.cfg.StorageCapBytes <= 0 {
		return nil
	}
	used, err := dirSize(s.dataRoot)
	if err != nil {
		return err
	}
	if used <= s.cfg.StorageCapBytes {
		return nil
	}
	return s.raiseOncePerWindow(ctx, entities.AlertStorageCap, entities.SeverityCritical,
		fmt.Sprintf("artifact store using %d bytes, above cap %d", used, s.cfg.StorageCapBytes))
}

// raiseOncePerWindow avoids paging on every tick for a condition that
// persists across many ticks by only creating a new alert if none of the
// same kind was raised within the sensor's own interval.
func (s *HealthSensor) raiseOncePerWindow(ctx context.Context, kind entities.AlertKind, severity entities.AlertSeverity, message string) error {
	recent, err := s.alerts.RecentCountByKind(ctx, kind, time.Now().Add(-s.interval))
	if err != nil {
		return err
	}
	if recent > 0 {
		return nil
	}
	return s.alerts.Create(ctx, entities.NewSystemAlert(kind, severity, message))
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
