package repository

import (
	"context"
	"time"

	"voteauth/internal/verification/domain"
)

// Repository defines persistence for code issuance records (the Verification Store).
type Repository interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByID(ctx context.Context, id string) (*domain.Verification, error)
	// LatestActive returns the most recent verification for voterID that is unverified, unconsumed,
	// and not expired at now, or nil. maxAttempts > 0 also excludes rows with that many failures.
	LatestActive(ctx context.Context, voterID string, now time.Time, maxAttempts int) (*domain.Verification, error)
	// LatestVerified returns the most recent verified verification that has a ballot token linked,
	// whether or not it has since expired or been consumed, or nil. Used for idempotent re-confirmation.
	LatestVerified(ctx context.Context, voterID string) (*domain.Verification, error)
	// LatestPendingSince returns the most recent unverified, unconsumed verification issued strictly
	// after since, or nil. Used by the rate limiter.
	LatestPendingSince(ctx context.Context, voterID string, since time.Time) (*domain.Verification, error)
	// MarkVerified sets verified_at if it is still unset. Returns ErrAlreadyVerified otherwise.
	MarkVerified(ctx context.Context, id string, at time.Time) error
	LinkBallotToken(ctx context.Context, id, token string) error
	// RecordFailedAttempt increments the wrong-guess counter and returns the new value.
	RecordFailedAttempt(ctx context.Context, id string) (int, error)
	// MarkConsumedByToken stamps consumed_at on the verification linked to token.
	MarkConsumedByToken(ctx context.Context, token string, at time.Time) error
}
