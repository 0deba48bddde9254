package server

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	verificationv1 "voteauth/api/verification/v1"
	ballothandler "voteauth/internal/ballot/handler"
	ballotservice "voteauth/internal/ballot/service"
	healthhandler "voteauth/internal/health/handler"
	verificationhandler "voteauth/internal/verification/handler"
	verificationservice "voteauth/internal/verification/service"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Verification backs VerificationService. If nil, its RPCs return Unimplemented.
	Verification *verificationservice.Service
	// Ballot backs BallotService. If nil, CheckToken returns Unimplemented.
	Ballot *ballotservice.Service
	// HealthPinger is used by the health service for readiness (e.g. *sql.DB). If nil, Check skips the DB ping.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by the health service for readiness (e.g. OPA evaluator). If nil, Check skips the policy check.
	HealthPolicyChecker healthhandler.PolicyChecker
	// DevCodeHandler is the dev-only DevService (GetCode). If nil, DevService is not registered.
	// Set only when dev code mode is enabled and not production.
	DevCodeHandler verificationv1.DevServiceServer
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - VerificationService → internal/verification/handler
//   - BallotService       → internal/ballot/handler
//   - grpc.health.v1      → internal/health/handler
//   - DevService          → internal/devotp/handler (dev mode only)
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	verificationv1.RegisterVerificationServiceServer(s, verificationhandler.NewServer(deps.Verification))
	verificationv1.RegisterBallotServiceServer(s, ballothandler.NewServer(deps.Ballot))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(deps.HealthPinger, deps.HealthPolicyChecker))
	if deps.DevCodeHandler != nil {
		verificationv1.RegisterDevServiceServer(s, deps.DevCodeHandler)
	}
}
