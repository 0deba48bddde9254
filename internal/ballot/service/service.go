package service

import (
	"context"
	"errors"
	"time"

	"voteauth/internal/audit"
	"voteauth/internal/ballot/domain"
	"voteauth/internal/store"
	"voteauth/internal/telemetry"
	voterdomain "voteauth/internal/voter/domain"
)

// Service looks up and redeems ballot tokens.
type Service struct {
	store   store.Store
	audit   audit.AuditLogger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewService returns a ballot Service. auditLogger and metrics may be nil.
func NewService(st store.Store, auditLogger audit.AuditLogger, metrics *telemetry.Metrics) *Service {
	return &Service{store: st, audit: auditLogger, metrics: metrics, now: func() time.Time { return time.Now().UTC() }}
}

// Check returns the token record for token. Returns ErrInvalidToken or ErrTokenNotFound.
func (s *Service) Check(ctx context.Context, token string) (*domain.BallotToken, error) {
	if !validToken(token) {
		return nil, ErrInvalidToken
	}
	b, err := s.store.Ballots().GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrTokenNotFound
	}
	return b, nil
}

// Redeem consumes token exactly once. In one transaction holding the voter's lock it moves the token
// from ACTIVE to CONSUMED, stamps the linked verification consumed, and marks the voter VOTED.
// Concurrent redemptions of the same token see exactly one success; the others get ErrTokenConsumed.
func (s *Service) Redeem(ctx context.Context, token string) (*domain.BallotToken, error) {
	b, err := s.Check(ctx, token)
	if err != nil {
		return nil, err
	}
	var consumed *domain.BallotToken
	err = s.store.WithinVoter(ctx, b.VoterID, func(ctx context.Context, tx store.Tx) error {
		consumed = nil
		at := s.now()
		ok, err := tx.Ballots().Consume(ctx, token, at)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTokenConsumed
		}
		if err := tx.Verifications().MarkConsumedByToken(ctx, token, at); err != nil {
			return err
		}
		if err := tx.Voters().UpdateStatus(ctx, b.VoterID, voterdomain.VoterStatusVoted, at); err != nil {
			return err
		}
		c := *b
		c.Status = domain.TokenStatusConsumed
		c.ConsumedAt = &at
		consumed = &c
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTokenConsumed) {
			s.metrics.TokenRedeemed(ctx, "already_consumed")
		}
		return nil, err
	}
	s.metrics.TokenRedeemed(ctx, "consumed")
	if s.audit != nil {
		s.audit.LogEvent(ctx, audit.Event{
			Action:   audit.ActionBallotTokenConsumed,
			Entity:   audit.EntityBallot,
			EntityID: consumed.ID,
			Payload: map[string]any{
				"voterId":     consumed.VoterID,
				"ballotToken": domain.TokenPrefix(consumed.Token),
			},
		})
	}
	return consumed, nil
}
