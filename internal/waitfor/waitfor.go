package waitfor

import (
	"context"
	"time"

	appErr "ojboot/pkg/errors"
	"ojboot/pkg/utils/logger"

	"go.uber.org/zap"
)

// Probe is a lightweight connectivity check against one dependency.
type Probe interface {
	// Name identifies the dependency in diagnostics (e.g. "mysql").
	Name() string
	// Addr is the probed endpoint, for diagnostics only.
	Addr() string
	// Check returns nil once the dependency is reachable.
	Check(ctx context.Context) error
}

// Policy bounds the wait loop: at most Attempts probes, Interval apart.
type Policy struct {
	Attempts int
	Interval time.Duration
}

// DefaultPolicy matches the container's expected startup window.
func DefaultPolicy() Policy {
	return Policy{Attempts: 30, Interval: 2 * time.Second}
}

// Waiter runs the bounded wait loop. Sleep is injectable so the loop is
// testable without real delays; when nil, a timer-based sleep is used.
type Waiter struct {
	Policy Policy
	Sleep  func(ctx context.Context, d time.Duration) error
}

// NewWaiter creates a Waiter with the given policy.
func NewWaiter(policy Policy) *Waiter {
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultPolicy().Attempts
	}
	if policy.Interval <= 0 {
		policy.Interval = DefaultPolicy().Interval
	}
	return &Waiter{Policy: policy}
}

// Wait probes the dependency until it is reachable or the retry budget is
// exhausted. The first success ends the loop; the dependency is never
// re-checked afterward. Exhaustion returns a dependency-unavailable error.
func (w *Waiter) Wait(ctx context.Context, probe Probe) error {
	sleep := w.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= w.Policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return appErr.Wrapf(err, appErr.WaitCanceled, "wait for %s canceled: %v", probe.Name(), err)
		}

		lastErr = probe.Check(ctx)
		if lastErr == nil {
			logger.Info(ctx, "dependency is reachable",
				zap.String("dependency", probe.Name()),
				zap.String("addr", probe.Addr()),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		logger.Warn(ctx, "dependency not reachable yet",
			zap.String("dependency", probe.Name()),
			zap.String("addr", probe.Addr()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", w.Policy.Attempts),
			zap.Error(lastErr),
		)

		if attempt == w.Policy.Attempts {
			break
		}
		if err := sleep(ctx, w.Policy.Interval); err != nil {
			return appErr.Wrapf(err, appErr.WaitCanceled, "wait for %s canceled: %v", probe.Name(), err)
		}
	}

	unreachable := appErr.Unreachable(probe.Name(), probe.Addr(), w.Policy.Attempts)
	if lastErr != nil {
		unreachable = unreachable.WithDetail("last_error", lastErr.Error())
	}
	return unreachable
}

// WaitAll waits for each probe in order. Dependencies are independent, so a
// sequential pass keeps diagnostics attributable to a single dependency.
func (w *Waiter) WaitAll(ctx context.Context, probes ...Probe) error {
	for _, probe := range probes {
		if err := w.Wait(ctx, probe); err != nil {
			return err
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
