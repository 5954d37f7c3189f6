package bookings

import (
	"context"
	"time"

	"spacehub/pkg/logger"
)

// JobProcessor drives the time-based sweeps: hold expiry and completion of
// elapsed bookings.
type JobProcessor struct {
	service Service
	config  *JobConfig
	log     *logger.Logger
	done    chan struct{}
}

// JobConfig contains configuration for the background sweeps
type JobConfig struct {
	SweepInterval time.Duration
	MaxBackoff    time.Duration
}

// DefaultJobConfig returns default sweep configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		SweepInterval: 30 * time.Second,
		MaxBackoff:    5 * time.Minute,
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(service Service, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}
	return &JobProcessor{
		service: service,
		config:  config,
		log:     logger.GetDefault(),
		done:    make(chan struct{}),
	}
}

// Start starts the sweep loop in its own goroutine.
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.run(ctx)
	jp.log.Info("booking sweep started", "interval", jp.config.SweepInterval.String())
}

// Stop stops the sweep loop.
func (jp *JobProcessor) Stop() {
	close(jp.done)
	jp.log.Info("booking sweep stopped")
}

// run ticks at the configured interval; after a failed sweep the next attempt
// is delayed with exponential backoff until a sweep succeeds again.
func (jp *JobProcessor) run(ctx context.Context) {
	delay := jp.config.SweepInterval
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if jp.sweep(ctx) {
				delay = jp.config.SweepInterval
			} else {
				delay *= 2
				if delay > jp.config.MaxBackoff {
					delay = jp.config.MaxBackoff
				}
				jp.log.Warn("sweep failed, backing off", "next_attempt_in", delay.String())
			}
			timer.Reset(delay)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep runs both passes and reports whether everything succeeded.
func (jp *JobProcessor) sweep(ctx context.Context) bool {
	ok := true

	expired, err := jp.service.SweepExpiredHolds(ctx)
	if err != nil {
		jp.log.Error("expired hold sweep failed", "error", err)
		ok = false
	}
	if expired > 0 {
		jp.log.Info("expired holds released", "count", expired)
	}

	completed, err := jp.service.SweepElapsed(ctx)
	if err != nil {
		jp.log.Error("completion sweep failed", "error", err)
		ok = false
	}
	if completed > 0 {
		jp.log.Info("bookings completed", "count", completed)
	}

	return ok
}
