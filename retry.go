package subagent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// RetryConfig controls Retrier.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts. Default: 1 (no retry)
	MaxAttempts int

	// Backoff computes the wait before each retry.
	// Default: 1s initial, 15s max, x2, 30% jitter
	Backoff stealth.BackoffConfig
}

func (cfg *RetryConfig) defaults() {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff.InitialWait == 0 {
		cfg.Backoff = stealth.BackoffConfig{
			InitialWait: 1 * time.Second,
			MaxWait:     15 * time.Second,
			Multiplier:  2.0,
			JitterPct:   0.3,
		}
	}
}

// Retrier wraps a Poster with a caller-side retry policy. Only transport
// failures and timeouts are retried. A timed-out post may still have
// reached the subagent, so retrying it can post twice.
type Retrier struct {
	next   Poster
	cfg    RetryConfig
	logger *slog.Logger
}

// NewRetrier wraps next. A nil logger means slog.Default().
func NewRetrier(next Poster, cfg RetryConfig, logger *slog.Logger) *Retrier {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{next: next, cfg: cfg, logger: logger}
}

// PostTweet implements Poster.
func (r *Retrier) PostTweet(ctx context.Context, text string) (Result, error) {
	var lastErr error
	for attempt := range r.cfg.MaxAttempts {
		if attempt > 0 {
			delay := r.cfg.Backoff.Duration(attempt)
			r.logger.Warn("subagent: retrying post",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", delay),
				slog.Any("error", lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctxError(ctx)
			}
		}

		result, err := r.next.PostTweet(ctx, text)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	if r.cfg.MaxAttempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("post failed after %d attempts: %w", r.cfg.MaxAttempts, lastErr)
}

func retryable(err error) bool {
	switch KindOf(err) {
	case KindTransport, KindTimeout:
		return true
	}
	return false
}
