// Package ratelimit enforces the per-voter cooldown between code issuances.
package ratelimit

import (
	"context"
	"math"
	"time"

	verificationrepo "voteauth/internal/verification/repository"
)

// DefaultCooldown is used when a Limiter is built with a non-positive cooldown.
const DefaultCooldown = 60 * time.Second

// Decision is the outcome of a cooldown check.
type Decision struct {
	Allowed bool
	// RetryAfterSeconds is the whole number of seconds until a new code may be requested. Zero when allowed.
	RetryAfterSeconds int
}

// Limiter denies a new code while the voter's latest pending code is younger than the cooldown.
// Verified or consumed codes do not count.
type Limiter struct {
	cooldown time.Duration
}

// NewLimiter returns a Limiter for the given cooldown.
func NewLimiter(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Limiter{cooldown: cooldown}
}

// Cooldown returns the configured cooldown.
func (l *Limiter) Cooldown() time.Duration { return l.cooldown }

// Check consults the verification store at now. Run it inside the voter's transaction so that two
// concurrent requests cannot both observe an empty window.
func (l *Limiter) Check(ctx context.Context, repo verificationrepo.Repository, voterID string, now time.Time) (Decision, error) {
	pending, err := repo.LatestPendingSince(ctx, voterID, now.Add(-l.cooldown))
	if err != nil {
		return Decision{}, err
	}
	if pending == nil {
		return Decision{Allowed: true}, nil
	}
	return Decision{RetryAfterSeconds: l.retryAfter(pending.IssuedAt, now)}, nil
}

// retryAfter rounds the remaining window up to whole seconds, clamped to [1, cooldown].
func (l *Limiter) retryAfter(issuedAt, now time.Time) int {
	remaining := issuedAt.Add(l.cooldown).Sub(now)
	secs := int(math.Ceil(remaining.Seconds()))
	max := int(math.Ceil(l.cooldown.Seconds()))
	if secs < 1 {
		secs = 1
	}
	if secs > max {
		secs = max
	}
	return secs
}
