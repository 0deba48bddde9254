package store

import (
	"context"
	"sort"
	"sync"
	"time"

	ballotdomain "voteauth/internal/ballot/domain"
	ballotrepo "voteauth/internal/ballot/repository"
	verificationdomain "voteauth/internal/verification/domain"
	verificationrepo "voteauth/internal/verification/repository"
	voterdomain "voteauth/internal/voter/domain"
	voterrepo "voteauth/internal/voter/repository"
)

// Memory is an in-process Store with the same uniqueness and locking guarantees as Postgres,
// for tests and local runs. Transactions are fully serialized and roll back on error.
type Memory struct {
	txMu sync.Mutex

	mu            sync.Mutex
	voters        map[string]voterdomain.Voter
	verifications map[string]verificationdomain.Verification
	ballots       map[string]ballotdomain.BallotToken // by voter ID
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		voters:        make(map[string]voterdomain.Voter),
		verifications: make(map[string]verificationdomain.Verification),
		ballots:       make(map[string]ballotdomain.BallotToken),
	}
}

func (m *Memory) Voters() voterrepo.Repository { return memVoters{m} }
func (m *Memory) Verifications() verificationrepo.Repository { return memVerifications{m} }
func (m *Memory) Ballots() ballotrepo.Repository { return memBallots{m} }

func (m *Memory) WithinVoter(ctx context.Context, voterID string, fn func(ctx context.Context, tx Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	v, ok := m.voters[voterID]
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	if !ok {
		return ErrVoterNotFound
	}

	if err := fn(ctx, memTx{m: m, voter: &v}); err != nil {
		m.mu.Lock()
		m.voters, m.verifications, m.ballots = snapshot.voters, snapshot.verifications, snapshot.ballots
		m.mu.Unlock()
		return err
	}
	return nil
}

type memSnapshot struct {
	voters        map[string]voterdomain.Voter
	verifications map[string]verificationdomain.Verification
	ballots       map[string]ballotdomain.BallotToken
}

func (m *Memory) snapshotLocked() memSnapshot {
	s := memSnapshot{
		voters:        make(map[string]voterdomain.Voter, len(m.voters)),
		verifications: make(map[string]verificationdomain.Verification, len(m.verifications)),
		ballots:       make(map[string]ballotdomain.BallotToken, len(m.ballots)),
	}
	for k, v := range m.voters {
		s.voters[k] = v
	}
	for k, v := range m.verifications {
		s.verifications[k] = v
	}
	for k, v := range m.ballots {
		s.ballots[k] = v
	}
	return s
}

type memTx struct {
	m     *Memory
	voter *voterdomain.Voter
}

func (t memTx) Voter() *voterdomain.Voter { return t.voter }

func (t memTx) Voters() voterrepo.Repository { return memVoters{t.m} }

func (t memTx) Verifications() verificationrepo.Repository { return memVerifications{t.m} }

func (t memTx) Ballots() ballotrepo.Repository { return memBallots{t.m} }

type memVoters struct{ m *Memory }

func (r memVoters) GetByRegNo(ctx context.Context, regNo string) (*voterdomain.Voter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, v := range r.m.voters {
		if v.RegNo == regNo {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (r memVoters) GetByID(ctx context.Context, id string) (*voterdomain.Voter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if v, ok := r.m.voters[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (r memVoters) LockByID(ctx context.Context, id string) (*voterdomain.Voter, error) {
	return r.GetByID(ctx, id)
}

func (r memVoters) UpdateStatus(ctx context.Context, id string, status voterdomain.VoterStatus, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.voters[id]
	if !ok {
		return ErrVoterNotFound
	}
	v.Status = status
	v.UpdatedAt = at
	r.m.voters[id] = v
	return nil
}

func (r memVoters) Create(ctx context.Context, v *voterdomain.Voter) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.voters[v.ID] = *v
	return nil
}

type memVerifications struct{ m *Memory }

func (r memVerifications) Create(ctx context.Context, v *verificationdomain.Verification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.verifications[v.ID] = *v
	return nil
}

func (r memVerifications) GetByID(ctx context.Context, id string) (*verificationdomain.Verification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if v, ok := r.m.verifications[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func (r memVerifications) LatestActive(ctx context.Context, voterID string, now time.Time, maxAttempts int) (*verificationdomain.Verification, error) {
	return r.latest(voterID, func(v *verificationdomain.Verification) bool {
		return v.IsActive(now, maxAttempts)
	}), nil
}

func (r memVerifications) LatestVerified(ctx context.Context, voterID string) (*verificationdomain.Verification, error) {
	return r.latest(voterID, func(v *verificationdomain.Verification) bool {
		return v.VerifiedAt != nil && v.BallotToken != ""
	}), nil
}

func (r memVerifications) LatestPendingSince(ctx context.Context, voterID string, since time.Time) (*verificationdomain.Verification, error) {
	return r.latest(voterID, func(v *verificationdomain.Verification) bool {
		return v.VerifiedAt == nil && v.ConsumedAt == nil && v.IssuedAt.After(since)
	}), nil
}

func (r memVerifications) MarkVerified(ctx context.Context, id string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.verifications[id]
	if !ok || v.VerifiedAt != nil {
		return verificationrepo.ErrAlreadyVerified
	}
	v.VerifiedAt = &at
	r.m.verifications[id] = v
	return nil
}

func (r memVerifications) LinkBallotToken(ctx context.Context, id, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if v, ok := r.m.verifications[id]; ok {
		v.BallotToken = token
		r.m.verifications[id] = v
	}
	return nil
}

func (r memVerifications) RecordFailedAttempt(ctx context.Context, id string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.verifications[id]
	if !ok {
		return 0, nil
	}
	v.FailedAttempts++
	r.m.verifications[id] = v
	return v.FailedAttempts, nil
}

func (r memVerifications) MarkConsumedByToken(ctx context.Context, token string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, v := range r.m.verifications {
		if v.BallotToken == token && v.ConsumedAt == nil {
			v.ConsumedAt = &at
			r.m.verifications[id] = v
		}
	}
	return nil
}

// latest returns a copy of the most recently issued verification of voterID matching keep.
func (r memVerifications) latest(voterID string, keep func(*verificationdomain.Verification) bool) *verificationdomain.Verification {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var matches []verificationdomain.Verification
	for _, v := range r.m.verifications {
		v := v
		if v.VoterID == voterID && keep(&v) {
			matches = append(matches, v)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].IssuedAt.After(matches[j].IssuedAt) })
	return &matches[0]
}

type memBallots struct{ m *Memory }

func (r memBallots) Create(ctx context.Context, b *ballotdomain.BallotToken) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.ballots[b.VoterID]; ok {
		return ballotrepo.ErrVoterHasToken
	}
	for _, existing := range r.m.ballots {
		if existing.Token == b.Token {
			return ballotrepo.ErrTokenCollision
		}
	}
	stored := *b
	stored.Status = ballotdomain.TokenStatusActive
	r.m.ballots[b.VoterID] = stored
	return nil
}

func (r memBallots) GetByVoter(ctx context.Context, voterID string) (*ballotdomain.BallotToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if b, ok := r.m.ballots[voterID]; ok {
		return &b, nil
	}
	return nil, nil
}

func (r memBallots) GetByToken(ctx context.Context, token string) (*ballotdomain.BallotToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, b := range r.m.ballots {
		if b.Token == token {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (r memBallots) Consume(ctx context.Context, token string, at time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for voterID, b := range r.m.ballots {
		if b.Token != token {
			continue
		}
		if b.Status != ballotdomain.TokenStatusActive {
			return false, nil
		}
		b.Status = ballotdomain.TokenStatusConsumed
		b.ConsumedAt = &at
		r.m.ballots[voterID] = b
		return true, nil
	}
	return false, nil
}
