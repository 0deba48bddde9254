// Package handler implements grpc.health.v1.Health for readiness and liveness probes.
package handler

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Pinger checks the database connection (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the eligibility policy still evaluates (e.g. *engine.OPAEvaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements the standard gRPC health service. Check reports NOT_SERVING when the DB ping or
// the policy check fails; both are skipped when nil.
type Server struct {
	healthpb.UnimplementedHealthServer
	pinger  Pinger
	checker PolicyChecker
}

// NewServer returns a Health server.
func NewServer(pinger Pinger, checker PolicyChecker) *Server {
	return &Server{pinger: pinger, checker: checker}
}

// Check reports overall readiness. Only the empty service name and registered service names are known.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && !knownServices[svc] {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	return &healthpb.HealthCheckResponse{Status: s.status(ctx)}, nil
}

// Watch is not supported; probes poll Check.
func (s *Server) Watch(req *healthpb.HealthCheckRequest, stream healthpb.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

func (s *Server) status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx); err != nil {
			log.Printf("health: db ping failed: %v", err)
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	if s.checker != nil {
		if err := s.checker.HealthCheck(ctx); err != nil {
			log.Printf("health: policy check failed: %v", err)
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	return healthpb.HealthCheckResponse_SERVING
}

var knownServices = map[string]bool{
	"voteauth.verification.v1.VerificationService": true,
	"voteauth.verification.v1.BallotService":       true,
}
