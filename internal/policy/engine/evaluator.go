package engine

import (
	"context"

	voterdomain "voteauth/internal/voter/domain"
)

// Decision is the result of an eligibility evaluation.
type Decision struct {
	Allow bool
	// Reason is a human-readable explanation when Allow is false. May be empty.
	Reason string
}

// Evaluator decides whether a voter may be issued a code, using OPA or other engines.
type Evaluator interface {
	EvaluateEligibility(ctx context.Context, voter *voterdomain.Voter) (Decision, error)
}

// StatusEvaluator allows exactly the voters whose roster status is ELIGIBLE. Used when no policy engine is configured.
type StatusEvaluator struct{}

func (StatusEvaluator) EvaluateEligibility(ctx context.Context, voter *voterdomain.Voter) (Decision, error) {
	if voter != nil && voter.Status == voterdomain.VoterStatusEligible {
		return Decision{Allow: true}, nil
	}
	return Decision{Reason: "voter is not eligible"}, nil
}
