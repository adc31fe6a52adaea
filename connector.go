package wiremysql

import (
	"context"
	"time"
)

// BackoffStrategy selects the wait-curve a Connector uses between reconnect
// attempts.
type BackoffStrategy int

const (
	// BackoffExponential doubles the wait on each attempt, capped at
	// defaultMaxInterval. The default.
	BackoffExponential BackoffStrategy = iota
	// BackoffConstant waits the same jittered interval every attempt.
	BackoffConstant
	// BackoffNone retries immediately with no wait, useful in tests.
	BackoffNone
)

func (s BackoffStrategy) intervaler() intervaler {
	switch s {
	case BackoffConstant:
		return newConstantBackoff()
	case BackoffNone:
		return noBackoff{}
	default:
		return newExponentialBackoff()
	}
}

// Connector wraps Connect with a jittered retry loop, the opt-in
// counterpart to Connect's own single-attempt behavior.
type Connector struct {
	cfg      *Config
	strategy intervaler
	attempts int
}

// NewConnector builds a Connector for cfg. maxAttempts bounds how many
// dial+handshake attempts Connect will make before giving up (0 means
// unlimited, governed only by ctx).
func NewConnector(cfg *Config, strategy BackoffStrategy, maxAttempts int) *Connector {
	return &Connector{cfg: cfg, strategy: strategy.intervaler(), attempts: maxAttempts}
}

// Connect retries Connect(ctx, cfg) until it succeeds, ctx is done, or the
// attempt budget is exhausted, whichever comes first.
func (c *Connector) Connect(ctx context.Context) (*Connection, error) {
	var lastErr error
	for order := 1; c.attempts == 0 || order <= c.attempts; order++ {
		conn, err := Connect(ctx, c.cfg)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		wait := c.strategy.NextInterval(order)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
