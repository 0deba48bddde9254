package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"

	voterdomain "voteauth/internal/voter/domain"
)

// eligibilityQuery selects the whole eligibility package so allow and reason come back in one evaluation.
const eligibilityQuery = "data.voteauth.eligibility"

// DefaultEligibilityPolicy allows voters whose roster status is ELIGIBLE.
// A replacement policy must live in package voteauth.eligibility and define allow (and optionally reason).
const DefaultEligibilityPolicy = `package voteauth.eligibility

default allow := false

allow if {
	input.voter.status == "ELIGIBLE"
}

reason := "voter is not on the eligible roster" if {
	input.voter.status == "INELIGIBLE"
}

reason := "voter has already voted" if {
	input.voter.status == "VOTED"
}
`

// OPAEvaluator evaluates voter eligibility using OPA Rego. The policy is compiled once at construction.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy. An empty policy uses DefaultEligibilityPolicy.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultEligibilityPolicy
	}
	q, err := rego.New(
		rego.Query(eligibilityQuery),
		rego.Module("eligibility.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy: compile eligibility policy: %w", err)
	}
	return &OPAEvaluator{query: q}, nil
}

// NewOPAEvaluatorFromFile reads a Rego module from path. An empty path uses the default policy.
func NewOPAEvaluatorFromFile(ctx context.Context, path string) (*OPAEvaluator, error) {
	if path == "" {
		return NewOPAEvaluator(ctx, "")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	return NewOPAEvaluator(ctx, string(raw))
}

// EvaluateEligibility evaluates the policy for voter. A nil voter is never eligible.
func (e *OPAEvaluator) EvaluateEligibility(ctx context.Context, voter *voterdomain.Voter) (Decision, error) {
	if voter == nil {
		return Decision{Reason: "voter not found"}, nil
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(voter)))
	if err != nil {
		return Decision{}, fmt.Errorf("policy: evaluate eligibility: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{Reason: "policy returned no result"}, nil
	}
	doc, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("policy: unexpected result type %T", rs[0].Expressions[0].Value)
	}
	out := Decision{}
	if allow, ok := doc["allow"].(bool); ok {
		out.Allow = allow
	}
	if reason, ok := doc["reason"].(string); ok && !out.Allow {
		out.Reason = reason
	}
	return out, nil
}

// HealthCheck verifies that the compiled policy evaluates against a minimal eligible voter.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.EvaluateEligibility(ctx, &voterdomain.Voter{ID: "health", RegNo: "HEALTH", Status: voterdomain.VoterStatusEligible})
	if err != nil {
		return err
	}
	if !d.Allow {
		return fmt.Errorf("policy: eligible probe voter was denied")
	}
	return nil
}

func buildInput(v *voterdomain.Voter) map[string]interface{} {
	return map[string]interface{}{
		"voter": map[string]interface{}{
			"id":        v.ID,
			"reg_no":    v.RegNo,
			"status":    string(v.Status),
			"has_email": v.Email != "",
			"has_phone": v.Phone != "",
		},
	}
}
