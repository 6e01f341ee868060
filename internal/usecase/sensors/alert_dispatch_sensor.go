package sensors

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/repositories"
)

// AlertNotifier delivers a system alert to whatever channel operators
// watch. Implemented by the chat-bot transport for this pipeline.
type AlertNotifier interface {
	SendAlert(ctx context.Context, alert *entities.SystemAlert) error
}

// AlertDispatchSensor drains undispatched alerts and delivers them,
// mirroring the reference pipeline's telegram_alert_sensor generalized to
// any notifier rather than being Telegram-specific.
type AlertDispatchSensor struct {
	alerts   repositories.AlertRepository
	notifier AlertNotifier
	interval time.Duration
	logger   *zap.Logger
}

// NewAlertDispatchSensor constructs the alert delivery sweep.
func NewAlertDispatchSensor(alerts repositories.AlertRepository, notifier AlertNotifier, interval time.Duration, logger *zap.Logger) *AlertDispatchSensor {
	return &AlertDispatchSensor{alerts: alerts, notifier: notifier, interval: interval, logger: logger}
}

// Name identifies the sensor for logging.
func (s *AlertDispatchSensor) Name() string { return "alert_dispatch_sensor" }

// Interval reports how often the sensor ticks.
func (s *AlertDispatchSensor) Interval() time.Duration { return s.interval }

// Tick sends every undispatched alert and marks it dispatched.
func (s *AlertDispatchSensor) Tick(ctx context.Context) error {
	pending, err := s.alerts.ListUndispatched(ctx)
	if err != nil {
		return err
	}
	for _, alert := range pending {
		if err := s.notifier.SendAlert(ctx, alert); err != nil {
			s.logger.Warn("failed to dispatch alert", zap.String("alert_id", alert.ID.String()), zap.Error(err))
			continue
		}
		if err := s.alerts.MarkDispatched(ctx, alert.ID); err != nil {
			s.logger.Warn("failed to mark alert dispatched", zap.String("alert_id", alert.ID.String()), zap.Error(err))
		}
	}
	return nil
}
