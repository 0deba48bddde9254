// Package handler implements VerificationService over gRPC.
package handler

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	verificationv1 "voteauth/api/verification/v1"
	"voteauth/internal/notify"
	"voteauth/internal/server/rpcerror"
	"voteauth/internal/verification/service"
)

const (
	msgRequestFailed = "Failed to request OTP"
	msgConfirmFailed = "Failed to verify OTP"
	msgVerified      = "Verification successful"
	msgReissued      = "Verification successful. A ballot token was already issued to you"
	tokenNote        = "Use this token to cast your vote. It can only be used once."
)

// Server implements VerificationService.
type Server struct {
	verificationv1.UnimplementedVerificationServiceServer
	svc *service.Service
}

// NewServer returns a VerificationService server. Pass nil svc for stub (Unimplemented).
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// RequestCode issues a one-time code for the registration number and sends it in the background.
func (s *Server) RequestCode(ctx context.Context, req *verificationv1.RequestCodeRequest) (*verificationv1.RequestCodeResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method RequestCode not implemented")
	}
	if strings.TrimSpace(req.GetRegNo()) == "" {
		return nil, invalidArgument("Registration number is required")
	}
	res, err := s.svc.RequestCode(ctx, req.GetRegNo())
	if err != nil {
		return nil, toStatus(err, msgRequestFailed)
	}
	sentVia := make([]string, len(res.SentVia))
	for i, ch := range res.SentVia {
		sentVia[i] = string(ch)
	}
	where := describe(res.SentVia)
	return &verificationv1.RequestCodeResponse{
		Message:   "OTP is being sent to your " + where,
		ExpiresIn: res.ExpiresIn,
		Hint:      "Check your " + where + " for the verification code. It may take a few moments to arrive.",
		SentVia:   sentVia,
	}, nil
}

// ConfirmCode verifies the code and returns a single-use ballot token.
func (s *Server) ConfirmCode(ctx context.Context, req *verificationv1.ConfirmCodeRequest) (*verificationv1.ConfirmCodeResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method ConfirmCode not implemented")
	}
	if strings.TrimSpace(req.GetRegNo()) == "" || req.GetOtp() == "" {
		return nil, invalidArgument("Registration number and OTP are required")
	}
	res, err := s.svc.ConfirmCode(ctx, req.GetRegNo(), req.GetOtp())
	if err != nil {
		return nil, toStatus(err, msgConfirmFailed)
	}
	resp := &verificationv1.ConfirmCodeResponse{
		Message:     msgVerified,
		BallotToken: res.BallotToken,
		IssuedAt:    res.IssuedAt,
		Note:        tokenNote,
	}
	if res.Reissued {
		resp.Message = msgReissued
		resp.Reissued = true
		resp.Kind = string(service.KindBallotAlreadyIssued)
	}
	return resp, nil
}

func invalidArgument(msg string) error {
	return rpcerror.Error{Code: codes.InvalidArgument, Reason: string(service.KindInvalidArgument), Message: msg}.Status()
}

// toStatus maps a service error to a status with its kind, hint and retry delay.
func toStatus(err error, internalMsg string) error {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return status.FromContextError(err).Err()
		}
		return rpcerror.Internal("verification", internalMsg, err)
	}
	return rpcerror.Error{
		Code:              codeFor(kind),
		Reason:            string(kind),
		Message:           messageFor(kind, err),
		Hint:              service.HintOf(err),
		RetryAfterSeconds: service.RetryAfter(err),
	}.Status()
}

func codeFor(kind service.Kind) codes.Code {
	switch kind {
	case service.KindInvalidArgument:
		return codes.InvalidArgument
	case service.KindNotFound:
		return codes.NotFound
	case service.KindNotEligible:
		return codes.PermissionDenied
	case service.KindAlreadyVoted, service.KindMissingContactChannel, service.KindNoActiveCode:
		return codes.FailedPrecondition
	case service.KindRateLimited:
		return codes.ResourceExhausted
	case service.KindInvalidCode:
		return codes.Unauthenticated
	case service.KindBallotAlreadyIssued:
		return codes.AlreadyExists
	}
	return codes.Internal
}

func messageFor(kind service.Kind, err error) string {
	switch kind {
	case service.KindNotFound:
		return "Registration number not found"
	case service.KindNotEligible:
		return "Voter is not eligible"
	case service.KindAlreadyVoted:
		return "You have already voted. Ballot already used."
	case service.KindRateLimited:
		return "Please wait before requesting another OTP"
	case service.KindMissingContactChannel:
		var mc *service.MissingContactChannelError
		if errors.As(err, &mc) && mc.Channel == notify.ChannelSMS {
			return "Voter phone number not found"
		}
		return "Voter email not found"
	case service.KindNoActiveCode:
		return "No valid OTP found"
	case service.KindInvalidCode:
		return "Invalid OTP"
	case service.KindBallotAlreadyIssued:
		return "Ballot token already issued"
	}
	return "Invalid request"
}

// describe names the delivery channels as prose ("email", "email and phone").
func describe(chs []notify.Channel) string {
	names := make([]string, 0, len(chs))
	for _, ch := range chs {
		switch ch {
		case notify.ChannelEmail:
			names = append(names, "email")
		case notify.ChannelSMS:
			names = append(names, "phone")
		}
	}
	if len(names) == 0 {
		return "email"
	}
	return strings.Join(names, " and ")
}
