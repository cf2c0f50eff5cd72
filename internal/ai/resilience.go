package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ryanmio/actblue-jail/internal/redact"
)

// ResilienceConfig tunes retry and circuit-breaker behavior for collaborator calls.
type ResilienceConfig struct {
	MaxAttempts         int     `toml:"max_attempts"`
	InitialBackoff      string  `toml:"initial_backoff"`
	MaxBackoff          string  `toml:"max_backoff"`
	BreakerMinRequests  uint32  `toml:"breaker_min_requests"`
	BreakerFailureRatio float64 `toml:"breaker_failure_ratio"`
	BreakerOpenTimeout  string  `toml:"breaker_open_timeout"`
}

// Finalize applies defaults.
func (c *ResilienceConfig) Finalize() error {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff == "" {
		c.InitialBackoff = "200ms"
	}
	if c.MaxBackoff == "" {
		c.MaxBackoff = "2s"
	}
	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = 10
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		c.BreakerFailureRatio = 0.5
	}
	if c.BreakerOpenTimeout == "" {
		c.BreakerOpenTimeout = "30s"
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ResilienceConfig) Merge(overlay *ResilienceConfig) {
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.InitialBackoff != "" {
		c.InitialBackoff = overlay.InitialBackoff
	}
	if overlay.MaxBackoff != "" {
		c.MaxBackoff = overlay.MaxBackoff
	}
	if overlay.BreakerMinRequests != 0 {
		c.BreakerMinRequests = overlay.BreakerMinRequests
	}
	if overlay.BreakerFailureRatio != 0 {
		c.BreakerFailureRatio = overlay.BreakerFailureRatio
	}
	if overlay.BreakerOpenTimeout != "" {
		c.BreakerOpenTimeout = overlay.BreakerOpenTimeout
	}
}

func (c *ResilienceConfig) initialBackoff() time.Duration {
	d, _ := time.ParseDuration(c.InitialBackoff)
	return d
}

func (c *ResilienceConfig) maxBackoff() time.Duration {
	d, _ := time.ParseDuration(c.MaxBackoff)
	return d
}

func (c *ResilienceConfig) breakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    name,
		Timeout: func() time.Duration { d, _ := time.ParseDuration(c.BreakerOpenTimeout); return d }(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= c.BreakerFailureRatio
		},
	}
}

// resilientClassifier wraps a Classifier with retry and a circuit breaker.
type resilientClassifier struct {
	inner   Classifier
	breaker *gobreaker.CircuitBreaker[*ClassifyResult]
	cfg     ResilienceConfig
	logger  *slog.Logger
}

// WithClassifierResilience wraps c so transient collaborator failures are
// retried with backoff and sustained failures trip a circuit breaker.
func WithClassifierResilience(c Classifier, cfg ResilienceConfig, logger *slog.Logger) Classifier {
	return &resilientClassifier{
		inner:   c,
		breaker: gobreaker.NewCircuitBreaker[*ClassifyResult](cfg.breakerSettings("classifier")),
		cfg:     cfg,
		logger:  logger.With("system", "ai-resilience"),
	}
}

func (r *resilientClassifier) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResult, error) {
	return r.breaker.Execute(func() (*ClassifyResult, error) {
		return retry(ctx, r.cfg, r.logger, "classify", func(ctx context.Context) (*ClassifyResult, error) {
			return r.inner.Classify(ctx, req)
		})
	})
}

// resilientDetector wraps a Detector the same way.
type resilientDetector struct {
	inner   Detector
	breaker *gobreaker.CircuitBreaker[redact.Detection]
	cfg     ResilienceConfig
	logger  *slog.Logger
}

// WithDetectorResilience wraps d with retry and a circuit breaker.
func WithDetectorResilience(d Detector, cfg ResilienceConfig, logger *slog.Logger) Detector {
	return &resilientDetector{
		inner:   d,
		breaker: gobreaker.NewCircuitBreaker[redact.Detection](cfg.breakerSettings("detector")),
		cfg:     cfg,
		logger:  logger.With("system", "ai-resilience"),
	}
}

func (r *resilientDetector) Detect(ctx context.Context, text, senderEmail string) (redact.Detection, error) {
	return r.breaker.Execute(func() (redact.Detection, error) {
		return retry(ctx, r.cfg, r.logger, "detect", func(ctx context.Context) (redact.Detection, error) {
			return r.inner.Detect(ctx, text, senderEmail)
		})
	})
}

func retry[T any](
	ctx context.Context,
	cfg ResilienceConfig,
	logger *slog.Logger,
	operation string,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	backoff := cfg.initialBackoff()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		logger.Warn("retrying collaborator call",
			"operation", operation,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}

		backoff *= 2
		if limit := cfg.maxBackoff(); backoff > limit {
			backoff = limit
		}
	}

	return zero, lastErr
}
