package sensors

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
)

// URLSensor admits queued submissions into the download stage in small
// batches, capped by a global concurrency ceiling, mirroring the reference
// pipeline's youtube_url_sensor but expressed as backpressure rather than
// a Dagster run request.
type URLSensor struct {
	submissions   repositories.SubmissionRepository
	interval      time.Duration
	batchSize     int
	taskCeiling   int
	logger        *zap.Logger
}

// NewURLSensor constructs the ingestion admission sensor.
func NewURLSensor(submissions repositories.SubmissionRepository, interval time.Duration, taskCeiling int, logger *zap.Logger) *URLSensor {
	return &URLSensor{submissions: submissions, interval: interval, batchSize: 5, taskCeiling: taskCeiling, logger: logger}
}

// Name identifies the sensor for logging.
func (s *URLSensor) Name() string { return "url_sensor" }

// Interval reports how often the sensor ticks.
func (s *URLSensor) Interval() time.Duration { return s.interval }

// Tick promotes queued submissions to downloading if headroom allows.
func (s *URLSensor) Tick(ctx context.Context) error {
	active, err := s.submissions.CountActive(ctx)
	if err != nil {
		return err
	}
	if s.taskCeiling > 0 && active >= int64(s.taskCeiling) {
		return nil
	}

	headroom := s.batchSize
	if s.taskCeiling > 0 {
		remaining := int(int64(s.taskCeiling) - active)
		if remaining < headroom {
			headroom = remaining
		}
	}
	if headroom <= 0 {
		return nil
	}

	promoted, err := s.submissions.PromoteQueued(ctx, headroom)
	if err != nil {
		return err
	}
	if promoted > 0 {
		s.logger.Info("admitted queued submissions", zap.Int64("count", promoted))
	}
	return nil
}
