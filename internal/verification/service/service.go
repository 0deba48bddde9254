// Package service implements the Verification Service: one-time code issuance and confirmation
// leading to a single-use ballot token.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"voteauth/internal/audit"
	ballotdomain "voteauth/internal/ballot/domain"
	ballotservice "voteauth/internal/ballot/service"
	"voteauth/internal/notify"
	"voteauth/internal/otp"
	"voteauth/internal/policy/engine"
	"voteauth/internal/ratelimit"
	"voteauth/internal/store"
	"voteauth/internal/telemetry"
	"voteauth/internal/verification/domain"
	voterdomain "voteauth/internal/voter/domain"
)

// DefaultCodeTTL is how long an issued code stays valid.
const DefaultCodeTTL = 300 * time.Second

// Confirmation outcomes recorded on the confirmations counter.
const (
	outcomeIssued       = "issued"
	outcomeReissued     = "reissued"
	outcomeReconfirmed  = "reconfirmed"
	outcomeInvalidCode  = "invalid_code"
	outcomeNoActiveCode = "no_active_code"
	outcomeAlreadyVoted = "already_voted"
)

// Dispatcher hands a message to background delivery.
type Dispatcher interface {
	DispatchAsync(msg notify.Message)
}

// Deps holds the collaborators of Service. Store, Generator, Limiter and Issuer are required.
type Deps struct {
	Store       store.Store
	Generator   *otp.Generator
	Limiter     *ratelimit.Limiter
	Issuer      *ballotservice.Issuer
	Eligibility engine.Evaluator
	Dispatcher  Dispatcher
	Audit       audit.AuditLogger
	Metrics     *telemetry.Metrics
	// Channels lists the delivery channels; empty means email only.
	Channels []notify.Channel
	// CodeTTL defaults to DefaultCodeTTL.
	CodeTTL time.Duration
	// MaxAttempts > 0 retires a code after that many wrong guesses.
	MaxAttempts int
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

// Service issues and confirms one-time codes.
type Service struct {
	store       store.Store
	generator   *otp.Generator
	limiter     *ratelimit.Limiter
	issuer      *ballotservice.Issuer
	eligibility engine.Evaluator
	dispatcher  Dispatcher
	audit       audit.AuditLogger
	metrics     *telemetry.Metrics
	channels    []notify.Channel
	codeTTL     time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewService returns a Service from deps, filling defaults for optional fields.
func NewService(deps Deps) (*Service, error) {
	if deps.Store == nil || deps.Generator == nil || deps.Limiter == nil || deps.Issuer == nil {
		return nil, errors.New("verification: store, generator, limiter and issuer are required")
	}
	s := &Service{
		store:       deps.Store,
		generator:   deps.Generator,
		limiter:     deps.Limiter,
		issuer:      deps.Issuer,
		eligibility: deps.Eligibility,
		dispatcher:  deps.Dispatcher,
		audit:       deps.Audit,
		metrics:     deps.Metrics,
		channels:    deps.Channels,
		codeTTL:     deps.CodeTTL,
		maxAttempts: deps.MaxAttempts,
		now:         deps.Now,
	}
	if s.eligibility == nil {
		s.eligibility = engine.StatusEvaluator{}
	}
	if len(s.channels) == 0 {
		s.channels = []notify.Channel{notify.ChannelEmail}
	}
	if s.codeTTL <= 0 {
		s.codeTTL = DefaultCodeTTL
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s, nil
}

// RequestResult acknowledges an issued code.
type RequestResult struct {
	VerificationID string
	ExpiresAt      time.Time
	// ExpiresIn is the code lifetime in seconds.
	ExpiresIn int
	SentVia   []notify.Channel
}

// ConfirmResult carries the ballot token granted by a confirmed code.
type ConfirmResult struct {
	BallotToken string
	IssuedAt    time.Time
	// Reissued is true when an existing unconsumed token was returned instead of a new one.
	Reissued bool

	ballotID       string
	verificationID string
	reconfirmed    bool
}

// RequestCode issues a fresh code to the voter identified by regNo and dispatches it in the background.
func (s *Service) RequestCode(ctx context.Context, regNo string) (*RequestResult, error) {
	regNo = voterdomain.NormalizeRegNo(regNo)
	if regNo == "" {
		return nil, fmt.Errorf("%w: registration number is required", ErrInvalidArgument)
	}
	voter, err := s.lookup(ctx, regNo)
	if err != nil {
		return nil, err
	}

	var (
		issued *domain.Verification
		msg    notify.Message
	)
	err = s.store.WithinVoter(ctx, voter.ID, func(ctx context.Context, tx store.Tx) error {
		issued = nil
		locked := tx.Voter()
		if err := s.checkVoter(ctx, locked); err != nil {
			return err
		}
		b, err := tx.Ballots().GetByVoter(ctx, locked.ID)
		if err != nil {
			return err
		}
		if b != nil && b.Status == ballotdomain.TokenStatusConsumed {
			return ErrAlreadyVoted
		}
		now := s.now()
		d, err := s.limiter.Check(ctx, tx.Verifications(), locked.ID, now)
		if err != nil {
			return err
		}
		if !d.Allowed {
			return &RateLimitedError{RetryAfterSeconds: d.RetryAfterSeconds}
		}
		if err := s.checkContact(locked); err != nil {
			return err
		}
		code, hash, err := s.generator.Generate()
		if err != nil {
			return fmt.Errorf("verification: generate code: %w", err)
		}
		v := &domain.Verification{
			ID:        uuid.New().String(),
			VoterID:   locked.ID,
			Method:    joinChannels(s.channels),
			OTPHash:   hash,
			IssuedAt:  now,
			ExpiresAt: now.Add(s.codeTTL),
		}
		if err := tx.Verifications().Create(ctx, v); err != nil {
			return err
		}
		issued = v
		msg = notify.Message{
			RegNo:     locked.RegNo,
			Name:      locked.Name,
			Email:     locked.Email,
			Phone:     locked.Phone,
			Code:      code,
			ExpiresAt: v.ExpiresAt,
			Channels:  s.channels,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			s.metrics.RateLimited(ctx)
		}
		err = s.translate(err)
		s.logFailure(ctx, audit.ActionOTPRequestFailed, voter, err)
		return nil, err
	}

	if s.dispatcher != nil {
		s.dispatcher.DispatchAsync(msg)
	}
	s.logEvent(ctx, audit.Event{
		Action:   audit.ActionOTPRequested,
		Entity:   audit.EntityVerification,
		EntityID: issued.ID,
		Payload: map[string]any{
			"voterId": voter.ID,
			"regNo":   regNo,
			"method":  issued.Method,
		},
	})
	s.metrics.CodeIssued(ctx, channelNames(s.channels))

	return &RequestResult{
		VerificationID: issued.ID,
		ExpiresAt:      issued.ExpiresAt,
		ExpiresIn:      int(s.codeTTL / time.Second),
		SentVia:        append([]notify.Channel(nil), s.channels...),
	}, nil
}

// ConfirmCode checks code against the voter's active code and, on a match, grants a ballot token.
// Re-confirming an already verified, unconsumed and unexpired code returns the same token.
func (s *Service) ConfirmCode(ctx context.Context, regNo, code string) (*ConfirmResult, error) {
	regNo = voterdomain.NormalizeRegNo(regNo)
	if regNo == "" || code == "" {
		return nil, fmt.Errorf("%w: registration number and code are required", ErrInvalidArgument)
	}
	voter, err := s.store.Voters().GetByRegNo(ctx, regNo)
	if err != nil {
		return nil, err
	}
	if voter == nil {
		return nil, ErrNotFound
	}

	var (
		out    *ConfirmResult
		failed *domain.Verification
	)
	err = s.store.WithinVoter(ctx, voter.ID, func(ctx context.Context, tx store.Tx) error {
		out, failed = nil, nil
		now := s.now()
		active, err := tx.Verifications().LatestActive(ctx, voter.ID, now, s.maxAttempts)
		if err != nil {
			return err
		}
		if active == nil {
			r, err := s.reconfirm(ctx, tx, code, now)
			if err != nil {
				return err
			}
			out = r
			return nil
		}
		if !s.generator.Verify(active.OTPHash, code) {
			if _, err := tx.Verifications().RecordFailedAttempt(ctx, active.ID); err != nil {
				return err
			}
			failed = active
			return nil
		}
		if err := s.checkVoter(ctx, tx.Voter()); err != nil {
			return err
		}
		if err := tx.Verifications().MarkVerified(ctx, active.ID, now); err != nil {
			return err
		}
		r := &ConfirmResult{verificationID: active.ID}
		b, err := s.issuer.Mint(ctx, tx.Ballots(), voter.ID, now)
		var already *ballotservice.AlreadyIssuedError
		switch {
		case errors.As(err, &already):
			if already.Existing.Status == ballotdomain.TokenStatusConsumed {
				return ErrAlreadyVoted
			}
			b = already.Existing
			r.Reissued = true
		case err != nil:
			return err
		}
		if err := tx.Verifications().LinkBallotToken(ctx, active.ID, b.Token); err != nil {
			return err
		}
		r.BallotToken = b.Token
		r.IssuedAt = b.IssuedAt
		r.ballotID = b.ID
		out = r
		return nil
	})
	if err != nil {
		err = s.translate(err)
		switch {
		case errors.Is(err, ErrNoActiveCode):
			s.metrics.ConfirmOutcome(ctx, outcomeNoActiveCode)
		case errors.Is(err, ErrAlreadyVoted):
			s.metrics.ConfirmOutcome(ctx, outcomeAlreadyVoted)
		}
		s.logFailure(ctx, audit.ActionOTPConfirmFailed, voter, err)
		return nil, err
	}

	if failed != nil {
		s.logEvent(ctx, audit.Event{
			Action:   audit.ActionOTPVerificationFailed,
			Entity:   audit.EntityVerification,
			EntityID: failed.ID,
			Payload: map[string]any{
				"voterId": voter.ID,
				"regNo":   regNo,
			},
		})
		s.metrics.ConfirmOutcome(ctx, outcomeInvalidCode)
		return nil, ErrInvalidCode
	}
	if out.reconfirmed {
		s.metrics.ConfirmOutcome(ctx, outcomeReconfirmed)
		return out, nil
	}

	payload := map[string]any{
		"voterId":     voter.ID,
		"regNo":       regNo,
		"ballotToken": ballotdomain.TokenPrefix(out.BallotToken),
	}
	outcome := outcomeIssued
	if out.Reissued {
		payload["reissued"] = true
		outcome = outcomeReissued
	}
	s.logEvent(ctx, audit.Event{
		Action:   audit.ActionOTPVerifiedBallotIssued,
		Entity:   audit.EntityBallot,
		EntityID: out.ballotID,
		Payload:  payload,
	})
	s.metrics.ConfirmOutcome(ctx, outcome)
	return out, nil
}

// reconfirm handles a confirmation with no active code. A code matching the latest linked verification
// returns its token while that verification is VERIFIED and unexpired. A CONSUMED or expired one is
// reported as ErrNoActiveCode, like any other used code.
func (s *Service) reconfirm(ctx context.Context, tx store.Tx, code string, now time.Time) (*ConfirmResult, error) {
	prev, err := tx.Verifications().LatestVerified(ctx, tx.Voter().ID)
	if err != nil {
		return nil, err
	}
	if prev == nil || !s.generator.Verify(prev.OTPHash, code) {
		return nil, ErrNoActiveCode
	}
	if prev.StateAt(now) != domain.StateVerified || now.After(prev.ExpiresAt) {
		return nil, ErrNoActiveCode
	}
	b, err := tx.Ballots().GetByToken(ctx, prev.BallotToken)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoActiveCode
	}
	if b.Status == ballotdomain.TokenStatusConsumed {
		return nil, ErrAlreadyVoted
	}
	return &ConfirmResult{
		BallotToken:    b.Token,
		IssuedAt:       b.IssuedAt,
		ballotID:       b.ID,
		verificationID: prev.ID,
		reconfirmed:    true,
	}, nil
}

// lookup finds the voter by normalized regNo and applies the status and eligibility checks.
func (s *Service) lookup(ctx context.Context, regNo string) (*voterdomain.Voter, error) {
	voter, err := s.store.Voters().GetByRegNo(ctx, regNo)
	if err != nil {
		return nil, err
	}
	if voter == nil {
		return nil, ErrNotFound
	}
	if err := s.checkVoter(ctx, voter); err != nil {
		return nil, err
	}
	return voter, nil
}

// checkVoter maps roster status to AlreadyVoted or NotEligible. VOTED is checked first so a voter
// who already cast a ballot is told so rather than being reported ineligible.
func (s *Service) checkVoter(ctx context.Context, voter *voterdomain.Voter) error {
	if voter.Status == voterdomain.VoterStatusVoted {
		return ErrAlreadyVoted
	}
	d, err := s.eligibility.EvaluateEligibility(ctx, voter)
	if err != nil {
		return fmt.Errorf("verification: eligibility: %w", err)
	}
	if !d.Allow {
		return ErrNotEligible
	}
	return nil
}

func (s *Service) checkContact(v *voterdomain.Voter) error {
	for _, ch := range s.channels {
		switch ch {
		case notify.ChannelEmail:
			if strings.TrimSpace(v.Email) == "" {
				return &MissingContactChannelError{Channel: ch}
			}
		case notify.ChannelSMS:
			if strings.TrimSpace(v.Phone) == "" {
				return &MissingContactChannelError{Channel: ch}
			}
		}
	}
	return nil
}

func (s *Service) translate(err error) error {
	if errors.Is(err, store.ErrVoterNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) logEvent(ctx context.Context, ev audit.Event) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, ev)
	}
}

// logFailure records an internal failure of a voter's transaction. Domain errors are not recorded here.
// The cause stays in the server log; the audit payload carries only the kind.
func (s *Service) logFailure(ctx context.Context, action string, voter *voterdomain.Voter, err error) {
	if KindOf(err) != KindInternal || errors.Is(err, context.Canceled) {
		return
	}
	s.logEvent(ctx, audit.Event{
		Action:   action,
		Entity:   audit.EntityVoter,
		EntityID: voter.ID,
		Payload: map[string]any{
			"voterId":   voter.ID,
			"regNo":     voter.RegNo,
			"errorKind": string(KindInternal),
		},
	})
}

func joinChannels(chs []notify.Channel) string {
	return strings.Join(channelNames(chs), ",")
}

func channelNames(chs []notify.Channel) []string {
	out := make([]string, len(chs))
	for i, ch := range chs {
		out[i] = string(ch)
	}
	return out
}
