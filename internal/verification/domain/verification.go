package domain

import "time"

// State is a voter's position in the code lifecycle, derived from the most recent Verification.
type State string

const (
	StateNone     State = "NONE"
	StateIssued   State = "ISSUED"
	StateExpired  State = "EXPIRED"
	StateVerified State = "VERIFIED"
	StateConsumed State = "CONSUMED"
)

// Verification represents one code issuance (stored in the verifications table).
// Rows are append-only: a new code creates a new row, and a verified row is never reused.
type Verification struct {
	ID             string
	VoterID        string
	Method         string
	OTPHash        string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	VerifiedAt     *time.Time
	ConsumedAt     *time.Time
	FailedAttempts int
	// BallotToken is set after a successful confirmation, for traceability.
	BallotToken string
}

// IsActive reports whether the code is unexpired, unverified, and unconsumed at now.
// maxAttempts > 0 additionally retires a code once that many wrong guesses were recorded.
func (v *Verification) IsActive(now time.Time, maxAttempts int) bool {
	if v == nil || v.VerifiedAt != nil || v.ConsumedAt != nil {
		return false
	}
	if maxAttempts > 0 && v.FailedAttempts >= maxAttempts {
		return false
	}
	return !now.After(v.ExpiresAt)
}

// StateAt derives the lifecycle state of v at now. A nil Verification is StateNone.
func (v *Verification) StateAt(now time.Time) State {
	switch {
	case v == nil:
		return StateNone
	case v.ConsumedAt != nil:
		return StateConsumed
	case v.VerifiedAt != nil:
		return StateVerified
	case now.After(v.ExpiresAt):
		return StateExpired
	default:
		return StateIssued
	}
}
