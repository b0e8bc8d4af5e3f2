package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WithRetry calls fn until it succeeds, maxRetries is exhausted or ctx ends.
// The delay doubles after every failed attempt. Failed attempts are logged at
// debug level; a nil logger is silent.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, logger *zap.Logger, fn func(context.Context) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			logger.Warn("storage retries exhausted", zap.Int("attempts", attempt+1), zap.Error(err))
			return err
		}
		logger.Debug("storage call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
