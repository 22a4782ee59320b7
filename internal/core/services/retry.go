package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/brdingest-cli/internal/core/domain"
	"github.com/custodia-labs/brdingest-cli/internal/logger"
)

// Default retry behaviour for external collaborators.
const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// withRetry runs op, retrying with doubling delay when the failure is
// marked domain.ErrTransient. Other errors return immediately.
// Exhaustion surfaces the last error as a per-page failure.
func withRetry(ctx context.Context, attempts int, delay time.Duration, what string, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTransient) || attempt == attempts {
			return err
		}

		logger.Warn("%s failed (attempt %d/%d), retrying in %s: %v", what, attempt, attempts, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
