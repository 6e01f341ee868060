package sensors

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sensor is a periodic background check, mirroring the reference
// pipeline's Dagster sensors: each tick inspects some piece of state and
// decides whether to act.
type Sensor interface {
	Name() string
	Interval() time.Duration
	Tick(ctx context.Context) error
}

// Registry runs a fixed set of sensors on their own tickers until stopped.
type Registry struct {
	sensors []Sensor
	logger  *zap.Logger
	stop    chan struct{}
}

// NewRegistry builds a sensor registry.
func NewRegistry(logger *zap.Logger, sensors ...Sensor) *Registry {
	return &Registry{sensors: sensors, logger: logger, stop: make(chan struct{})}
}

// Start launches every registered sensor on its own goroutine.
func (r *Registry) Start(ctx context.Context) {
	for _, s := range r.sensors {
		go r.run(ctx, s)
	}
}

// Stop signals every sensor goroutine to exit.
func (r *Registry) Stop() {
	close(r.stop)
}

func (r *Registry) run(ctx context.Context, s Sensor) {
	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				r.logger.Warn("sensor tick failed", zap.String("sensor", s.Name()), zap.Error(err))
			}
		}
	}
}
