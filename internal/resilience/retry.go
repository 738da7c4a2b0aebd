// Package resilience provides reliability patterns for storage and
// external service calls.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/domain"
)

// Retry runs fn up to attempts times, backing off exponentially from base
// between tries. Only transient failures (domain.ErrStorageUnavailable)
// are retried; any other error returns immediately. The core never retries
// internally — this lives at call sites such as startup connect and the
// periodic audit sweep.
func Retry(ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := base
	for i := range attempts {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
