package omsu

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER - Token Bucket implementation
// ══════════════════════════════════════════════════════════════════════════════

// ErrRateLimitWait is returned when a token does not become available within
// the configured wait timeout.
var ErrRateLimitWait = errors.New("omsu: timed out waiting for rate limiter")

// RateLimiterConfig contains configuration for the feed rate limiter.
type RateLimiterConfig struct {
	// RequestsPerSecond is the maximum sustained request rate.
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst.
	BurstSize int

	// MinInterval is the minimum time between requests, even with tokens
	// available. This is the fixed inter-call delay the feed tolerates.
	MinInterval time.Duration

	// WaitTimeout is the maximum time to wait for a token.
	WaitTimeout time.Duration
}

// DefaultRateLimiterConfig returns conservative defaults. The feed is an
// unauthenticated public backend; staying well under its limits matters more
// than sync latency.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 2.0,
		BurstSize:         4,
		MinInterval:       250 * time.Millisecond,
		WaitTimeout:       30 * time.Second,
	}
}

// RateLimiter implements the token bucket algorithm to pace feed requests.
type RateLimiter struct {
	mu sync.Mutex

	maxTokens   float64
	refillRate  float64
	tokens      float64
	lastRefill  time.Time
	minInterval time.Duration
	lastRequest time.Time
	waitTimeout time.Duration
}

// NewRateLimiter creates a RateLimiter with the given configuration.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		maxTokens:   float64(config.BurstSize),
		refillRate:  config.RequestsPerSecond,
		tokens:      float64(config.BurstSize), // start with a full bucket
		lastRefill:  now,
		minInterval: config.MinInterval,
		lastRequest: now.Add(-config.MinInterval), // allow an immediate first request
		waitTimeout: config.WaitTimeout,
	}
}

// Allow blocks until a request may proceed, the context is cancelled, or the
// wait timeout elapses.
func (rl *RateLimiter) Allow(ctx context.Context) error {
	deadline := time.Now().Add(rl.waitTimeout)

	for {
		wait, ok := rl.tryAcquire()
		if ok {
			return nil
		}
		if time.Now().Add(wait).After(deadline) {
			return ErrRateLimitWait
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// tryAcquire attempts to take a token. On failure it returns how long to
// wait before the next attempt.
func (rl *RateLimiter) tryAcquire() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Refill tokens for the elapsed time.
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if since := now.Sub(rl.lastRequest); since < rl.minInterval {
		return rl.minInterval - since, false
	}

	if rl.tokens < 1 {
		deficit := 1 - rl.tokens
		return time.Duration(deficit / rl.refillRate * float64(time.Second)), false
	}

	rl.tokens--
	rl.lastRequest = now
	return 0, true
}
