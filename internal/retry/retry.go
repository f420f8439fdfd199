// Package retry implements bounded retry with exponential backoff for
// transient acquisition failures. Permanent classifications short-circuit
// on the first occurrence.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/docket-watch/acquire/internal/errdefs"
	"github.com/rs/zerolog/log"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxAttempts    int           // Maximum number of attempts (including the first)
	InitialBackoff time.Duration // Backoff before the second attempt
	MaxBackoff     time.Duration // Backoff ceiling
	Multiplier     float64       // Backoff growth factor
}

// DefaultConfig returns a sensible default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// Do executes fn up to cfg.MaxAttempts times. Errors are classified into the
// acquisition taxonomy; only transient kinds (timeouts, 5xx) trigger another
// attempt. The last classification is returned verbatim so callers can
// branch on it without unwrapping.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr *errdefs.Error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := Backoff(attempt-1, cfg)
			log.Debug().
				Int("attempt", attempt+1).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Str("kind", string(lastErr.Kind)).
				Msg("Retrying after backoff")
			if err := Wait(ctx, backoff); err != nil {
				return errdefs.Timeout("cancelled during backoff", err)
			}
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug().Int("attempts", attempt+1).Msg("Retry succeeded")
			}
			return nil
		}

		lastErr = errdefs.Classify(err)
		if !lastErr.Transient() {
			log.Debug().Str("kind", string(lastErr.Kind)).Msg("Error is not retryable")
			return lastErr
		}
	}

	log.Warn().
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return lastErr
}

// Backoff calculates the backoff duration after the given zero-based attempt
func Backoff(attempt int, cfg Config) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}

// Wait sleeps for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
