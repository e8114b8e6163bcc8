package feed

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Backoff bounds the wait between reconnect attempts of a bridge.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

// DefaultBackoff starts at one second and doubles up to thirty.
var DefaultBackoff = Backoff{Min: time.Second, Max: 30 * time.Second}

func (b Backoff) normalize() Backoff {
	if b.Min <= 0 {
		b.Min = DefaultBackoff.Min
	}
	if b.Max < b.Min {
		b.Max = max(b.Min, DefaultBackoff.Max)
	}
	return b
}

// retry runs session until it returns nil or ctx is done. Failed sessions
// are logged and restarted after an exponentially growing wait; the wait
// resets once a session has run for longer than the current backoff.
func retry(ctx context.Context, backoff Backoff, logger *zap.Logger, name string, session func(context.Context) error) error {
	backoff = backoff.normalize()
	wait := backoff.Min
	for {
		started := time.Now()
		err := session(ctx)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		if time.Since(started) > wait {
			wait = backoff.Min
		}
		logger.Warn(name+" unavailable, retrying",
			zap.Error(err),
			zap.Duration("backoff", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		wait = min(wait*2, backoff.Max)
	}
}
