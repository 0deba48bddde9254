package repository

import (
	"context"
	"time"

	"voteauth/internal/voter/domain"
)

// Repository defines persistence for eligible voters.
type Repository interface {
	// GetByRegNo returns the voter with the normalized registration number, or nil if not found.
	GetByRegNo(ctx context.Context, regNo string) (*domain.Voter, error)
	GetByID(ctx context.Context, id string) (*domain.Voter, error)
	// LockByID returns the voter and holds a row lock until the surrounding transaction ends.
	// Returns nil if the voter does not exist.
	LockByID(ctx context.Context, id string) (*domain.Voter, error)
	UpdateStatus(ctx context.Context, id string, status domain.VoterStatus, at time.Time) error
	Create(ctx context.Context, v *domain.Voter) error
}
