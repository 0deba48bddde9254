// Package service implements the Ballot Token Issuer and the redemption primitive used by vote casting.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"voteauth/internal/ballot/domain"
	ballotrepo "voteauth/internal/ballot/repository"
)

const (
	// DefaultTokenBytes gives 256 bits of entropy, rendered as 64 hex characters.
	DefaultTokenBytes = 32
	// MinTokenBytes is the smallest accepted size (128 bits).
	MinTokenBytes = 16
	// mintAttempts bounds retries on a token value collision.
	mintAttempts = 3
)

// Issuer mints ballot tokens. It is the only writer of ACTIVE tokens.
type Issuer struct {
	tokenBytes int
	random     io.Reader
}

// NewIssuer returns an Issuer producing tokens of tokenBytes random bytes. Values below MinTokenBytes use DefaultTokenBytes.
func NewIssuer(tokenBytes int) *Issuer {
	if tokenBytes < MinTokenBytes {
		tokenBytes = DefaultTokenBytes
	}
	return &Issuer{tokenBytes: tokenBytes, random: rand.Reader}
}

// TokenLength returns the length of a hex-encoded token.
func (i *Issuer) TokenLength() int { return i.tokenBytes * 2 }

// NewToken returns a fresh hex-encoded random token value.
func (i *Issuer) NewToken() (string, error) {
	b := make([]byte, i.tokenBytes)
	if _, err := io.ReadFull(i.random, b); err != nil {
		return "", fmt.Errorf("ballot: read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Mint creates the voter's ACTIVE token at the given time using repo, which should be bound to the
// voter's transaction. If the voter already has a token, Mint returns *AlreadyIssuedError carrying it.
func (i *Issuer) Mint(ctx context.Context, repo ballotrepo.Repository, voterID string, at time.Time) (*domain.BallotToken, error) {
	existing, err := repo.GetByVoter(ctx, voterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadyIssuedError{Existing: existing}
	}
	for attempt := 0; attempt < mintAttempts; attempt++ {
		value, err := i.NewToken()
		if err != nil {
			return nil, err
		}
		b := &domain.BallotToken{
			ID:       uuid.New().String(),
			VoterID:  voterID,
			Token:    value,
			Status:   domain.TokenStatusActive,
			IssuedAt: at,
		}
		err = repo.Create(ctx, b)
		switch {
		case err == nil:
			return b, nil
		case errors.Is(err, ballotrepo.ErrTokenCollision):
			continue
		case errors.Is(err, ballotrepo.ErrVoterHasToken):
			existing, getErr := repo.GetByVoter(ctx, voterID)
			if getErr != nil {
				return nil, getErr
			}
			return nil, &AlreadyIssuedError{Existing: existing}
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("ballot: %d token collisions in a row", mintAttempts)
}

// validToken reports whether token is non-empty lowercase hex.
func validToken(token string) bool {
	if token == "" || len(token) > 256 {
		return false
	}
	for _, r := range token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
