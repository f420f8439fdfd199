package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docket-watch/acquire/internal/errdefs"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errdefs.Upstream(503, "unavailable", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDoExhaustsAttemptsOnPersistentTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return errdefs.Upstream(503, "unavailable", nil)
	})
	if calls != 3 {
		t.Errorf("Expected exactly 3 calls, got %d", calls)
	}
	var e *errdefs.Error
	if !errors.As(err, &e) || e.Kind != errdefs.KindUpstream || e.Status != 503 {
		t.Errorf("Expected the last Upstream(503) verbatim, got %v", err)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		return errdefs.ChallengeUnsolved("solver gave up")
	})
	if calls != 1 {
		t.Errorf("Permanent error should not retry, got %d calls", calls)
	}
	if !errdefs.IsKind(err, errdefs.KindChallengeUnsolved) {
		t.Errorf("Expected ChallengeUnsolved, got %v", err)
	}
}

func TestDoClassifiesUntypedErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), func() error {
		calls++
		return errors.New("connection refused")
	})
	// Untyped network-ish errors classify as Upstream(0), which is transient.
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
	if !errdefs.IsKind(err, errdefs.KindUpstream) {
		t.Errorf("Expected Upstream classification, got %v", err)
	}
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	cfg := Config{
		MaxAttempts:    3,
		InitialBackoff: time.Minute,
		MaxBackoff:     time.Minute,
		Multiplier:     2.0,
	}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, cfg, func() error {
		calls++
		return errdefs.Timeout("slow", nil)
	})
	if calls != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", calls)
	}
	if !errdefs.IsKind(err, errdefs.KindTimeout) {
		t.Errorf("Expected Timeout, got %v", err)
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	cfg := Config{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	}
	if got := Backoff(0, cfg); got != time.Second {
		t.Errorf("Backoff(0) = %v, want 1s", got)
	}
	if got := Backoff(1, cfg); got != 2*time.Second {
		t.Errorf("Backoff(1) = %v, want 2s", got)
	}
	if got := Backoff(10, cfg); got != 10*time.Second {
		t.Errorf("Backoff(10) = %v, want the 10s ceiling", got)
	}
}
