// Package ratelimit paces outbound WiGLE requests.
//
// WiGLE publishes no error-budget headers; it enforces a daily query quota
// and answers bursts with 429. The limiter keeps the client polite by
// spacing requests with a token bucket, so the 429 path stays a rare
// retry case instead of the steady state.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limit pacing.
var (
	wigleRateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wigle_rate_limit_throttles_total",
		Help: "Total number of requests delayed by the local rate limiter",
	})

	wigleRateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wigle_rate_limit_wait_seconds",
		Help:    "Time spent waiting on the local rate limiter",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10},
	})
)

// Limiter gates outbound requests with a token bucket.
type Limiter struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates a limiter allowing requestsPerSecond sustained throughput
// with a burst of one. A non-positive rate disables pacing entirely.
func New(requestsPerSecond float64, logger zerolog.Logger) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1), logger: logger}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger,
	}
}

// Wait blocks until the next request is allowed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	waited := time.Since(start)
	wigleRateLimitWaitSeconds.Observe(waited.Seconds())
	if waited > 10*time.Millisecond {
		wigleRateLimitThrottlesTotal.Inc()
		l.logger.Debug().
			Dur("waited", waited).
			Msg("Request delayed by rate limiter")
	}
	return nil
}
