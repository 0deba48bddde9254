package domain

import (
	"strings"
	"time"
)

// VoterStatus is the roster eligibility status.
type VoterStatus string

const (
	VoterStatusEligible   VoterStatus = "ELIGIBLE"
	VoterStatusIneligible VoterStatus = "INELIGIBLE"
	VoterStatusVoted      VoterStatus = "VOTED"
)

// Voter represents an eligible_voters row. Created by roster import; this service only
// reads it, apart from the VOTED transition performed when a ballot token is consumed.
type Voter struct {
	ID        string
	RegNo     string
	Name      string
	Email     string
	Phone     string
	Status    VoterStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeRegNo trims and upper-cases a registration number as typed by a voter.
func NormalizeRegNo(regNo string) string {
	return strings.ToUpper(strings.TrimSpace(regNo))
}
