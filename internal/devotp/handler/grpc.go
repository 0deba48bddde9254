// Package handler implements the dev-only gRPC DevService (GetCode).
package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	verificationv1 "voteauth/api/verification/v1"
	"voteauth/internal/devotp"
	voterdomain "voteauth/internal/voter/domain"
)

const devCodeNote = "DEV MODE ONLY"

// Server implements DevService. Only registered when dev code mode is enabled and not production.
type Server struct {
	verificationv1.UnimplementedDevServiceServer
	store devotp.Store
}

// NewServer returns a DevService server that reads codes from the given store.
func NewServer(store devotp.Store) *Server {
	return &Server{store: store}
}

// GetCode returns the latest plaintext code sent to regNo. Returns NotFound if missing or expired.
func (s *Server) GetCode(ctx context.Context, req *verificationv1.GetCodeRequest) (*verificationv1.GetCodeResponse, error) {
	regNo := voterdomain.NormalizeRegNo(req.GetRegNo())
	if regNo == "" {
		return nil, status.Error(codes.InvalidArgument, "regNo is required")
	}
	code, ok := s.store.Get(ctx, regNo)
	if !ok {
		return nil, status.Error(codes.NotFound, "OTP not found or expired")
	}
	return &verificationv1.GetCodeResponse{
		Otp:  code,
		Note: devCodeNote,
	}, nil
}
