// Package store groups the voter, verification, and ballot repositories behind one
// transactional boundary that serializes work per voter.
package store

import (
	"context"
	"errors"

	ballotrepo "voteauth/internal/ballot/repository"
	verificationrepo "voteauth/internal/verification/repository"
	voterdomain "voteauth/internal/voter/domain"
	voterrepo "voteauth/internal/voter/repository"
)

// ErrVoterNotFound is returned by WithinVoter when the voter row does not exist.
var ErrVoterNotFound = errors.New("store: voter not found")

// Tx exposes repositories bound to one transaction that holds the voter's row lock.
type Tx interface {
	// Voter is the locked voter row as read at the start of the transaction.
	Voter() *voterdomain.Voter
	Voters() voterrepo.Repository
	Verifications() verificationrepo.Repository
	Ballots() ballotrepo.Repository
}

// Store provides non-transactional reads and per-voter transactions.
type Store interface {
	Voters() voterrepo.Repository
	Verifications() verificationrepo.Repository
	Ballots() ballotrepo.Repository
	// WithinVoter runs fn in a transaction holding an exclusive lock on voterID. The transaction
	// commits when fn returns nil and rolls back otherwise. fn may be invoked a second time after
	// a transient conflict, so it must reset any captured results at the start.
	WithinVoter(ctx context.Context, voterID string, fn func(ctx context.Context, tx Tx) error) error
}
