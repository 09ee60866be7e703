// Package worker provides a small periodic loop abstraction for background
// tasks with context cancellation, such as the optional standing-policy
// refresh.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config configures the loop.
type Config struct {
	// Name identifies the worker for logging.
	Name string

	// Interval is the time between runs.
	Interval time.Duration

	// Run is called once per interval.
	Run func(ctx context.Context)

	// Logger for the worker.
	Logger *zerolog.Logger
}

// Loop runs cfg.Run every cfg.Interval until the context is cancelled.
// Returns the wrapped context error on cancellation.
func Loop(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if cfg.Interval <= 0 {
		logger.Debug().Str("worker", cfg.Name).Msg("worker disabled, no interval configured")

		return nil
	}

	logger.Info().Str("worker", cfg.Name).Dur("interval", cfg.Interval).Msg("starting worker loop")

	defer logger.Info().Str("worker", cfg.Name).Msg("worker loop stopped")

	for {
		if err := Wait(ctx, cfg.Interval); err != nil {
			return fmt.Errorf("worker loop %s: %w", cfg.Name, err)
		}

		if cfg.Run != nil {
			cfg.Run(ctx)
		}
	}
}

// Wait blocks until the duration elapses or the context is cancelled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}
