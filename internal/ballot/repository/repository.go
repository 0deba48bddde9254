package repository

import (
	"context"
	"errors"
	"time"

	"voteauth/internal/ballot/domain"
)

var (
	// ErrVoterHasToken is returned by Create when the voter already owns a ballot token.
	ErrVoterHasToken = errors.New("voter already has a ballot token")
	// ErrTokenCollision is returned by Create when the token value is already taken.
	ErrTokenCollision = errors.New("ballot token value collision")
)

// Repository defines persistence for ballot tokens.
type Repository interface {
	// Create inserts an ACTIVE token. Returns ErrVoterHasToken or ErrTokenCollision on uniqueness conflicts.
	Create(ctx context.Context, b *domain.BallotToken) error
	GetByVoter(ctx context.Context, voterID string) (*domain.BallotToken, error)
	GetByToken(ctx context.Context, token string) (*domain.BallotToken, error)
	// Consume moves token from ACTIVE to CONSUMED in a single compare-and-set.
	// Returns false if the token does not exist or is not ACTIVE.
	Consume(ctx context.Context, token string, at time.Time) (bool, error)
}
