// Package handler implements BallotService over gRPC.
package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	verificationv1 "voteauth/api/verification/v1"
	"voteauth/internal/ballot/service"
	"voteauth/internal/server/rpcerror"
)

// Server implements BallotService.
type Server struct {
	verificationv1.UnimplementedBallotServiceServer
	svc *service.Service
}

// NewServer returns a BallotService server. Pass nil svc for stub (Unimplemented).
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// CheckToken reports whether a ballot token is ACTIVE or CONSUMED.
func (s *Server) CheckToken(ctx context.Context, req *verificationv1.CheckTokenRequest) (*verificationv1.CheckTokenResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CheckToken not implemented")
	}
	b, err := s.svc.Check(ctx, req.GetBallotToken())
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return nil, rpcerror.Error{Code: codes.InvalidArgument, Reason: "INVALID_TOKEN", Message: "Ballot token is malformed"}.Status()
	case errors.Is(err, service.ErrTokenNotFound):
		return nil, rpcerror.Error{
			Code:    codes.NotFound,
			Reason:  "TOKEN_NOT_FOUND",
			Message: "Ballot token not found",
			Hint:    "Verify your registration number again to obtain a token",
		}.Status()
	case err != nil:
		return nil, rpcerror.Internal("ballot", "Failed to check ballot token", err)
	}
	return &verificationv1.CheckTokenResponse{
		Status:     string(b.Status),
		IssuedAt:   b.IssuedAt,
		ConsumedAt: b.ConsumedAt,
	}, nil
}
