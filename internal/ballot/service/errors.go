package service

import (
	"errors"

	"voteauth/internal/ballot/domain"
)

var (
	// ErrBallotAlreadyIssued is matched by *AlreadyIssuedError.
	ErrBallotAlreadyIssued = errors.New("ballot token already issued for voter")
	// ErrTokenNotFound is returned when no ballot token has the given value.
	ErrTokenNotFound = errors.New("ballot token not found")
	// ErrTokenConsumed is returned when redeeming a token that is no longer ACTIVE.
	ErrTokenConsumed = errors.New("ballot token already consumed")
	// ErrInvalidToken is returned for an empty or malformed token value.
	ErrInvalidToken = errors.New("invalid ballot token")
)

// AlreadyIssuedError carries the voter's existing token so callers can return it idempotently.
type AlreadyIssuedError struct {
	Existing *domain.BallotToken
}

func (e *AlreadyIssuedError) Error() string { return ErrBallotAlreadyIssued.Error() }

func (e *AlreadyIssuedError) Is(target error) bool { return target == ErrBallotAlreadyIssued }
