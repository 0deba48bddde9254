package domain

import "time"

// TokenStatus is the lifecycle status of a ballot token.
type TokenStatus string

const (
	TokenStatusActive   TokenStatus = "ACTIVE"
	TokenStatusConsumed TokenStatus = "CONSUMED"
)

// BallotToken is the single-use credential exchanged for the right to cast one ballot.
// At most one row exists per voter; the vote-casting path moves it from ACTIVE to CONSUMED once.
type BallotToken struct {
	ID         string
	VoterID    string
	Token      string
	Status     TokenStatus
	IssuedAt   time.Time
	ConsumedAt *time.Time
}

// TokenPrefix returns the first 8 characters of token followed by "...", for logs and audit payloads.
func TokenPrefix(token string) string {
	if len(token) <= 8 {
		return token + "..."
	}
	return token[:8] + "..."
}
