package verificationv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	VerificationService_RequestCode_FullMethodName = "/voteauth.verification.v1.VerificationService/RequestCode"
	VerificationService_ConfirmCode_FullMethodName = "/voteauth.verification.v1.VerificationService/ConfirmCode"
	BallotService_CheckToken_FullMethodName        = "/voteauth.verification.v1.BallotService/CheckToken"
	DevService_GetCode_FullMethodName              = "/voteauth.verification.v1.DevService/GetCode"
)

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// VerificationService

type VerificationServiceServer interface {
	RequestCode(context.Context, *RequestCodeRequest) (*RequestCodeResponse, error)
	ConfirmCode(context.Context, *ConfirmCodeRequest) (*ConfirmCodeResponse, error)
}

type UnimplementedVerificationServiceServer struct{}

func (UnimplementedVerificationServiceServer) RequestCode(context.Context, *RequestCodeRequest) (*RequestCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestCode not implemented")
}

func (UnimplementedVerificationServiceServer) ConfirmCode(context.Context, *ConfirmCodeRequest) (*ConfirmCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmCode not implemented")
}

func RegisterVerificationServiceServer(s grpc.ServiceRegistrar, srv VerificationServiceServer) {
	s.RegisterService(&VerificationService_ServiceDesc, srv)
}

func _VerificationService_RequestCode_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RequestCodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VerificationServiceServer).RequestCode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VerificationService_RequestCode_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VerificationServiceServer).RequestCode(ctx, req.(*RequestCodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VerificationService_ConfirmCode_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConfirmCodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VerificationServiceServer).ConfirmCode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VerificationService_ConfirmCode_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VerificationServiceServer).ConfirmCode(ctx, req.(*ConfirmCodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var VerificationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "voteauth.verification.v1.VerificationService",
	HandlerType: (*VerificationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RequestCode", Handler: _VerificationService_RequestCode_Handler},
		{MethodName: "ConfirmCode", Handler: _VerificationService_ConfirmCode_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "voteauth/verification/v1",
}

type VerificationServiceClient interface {
	RequestCode(ctx context.Context, in *RequestCodeRequest, opts ...grpc.CallOption) (*RequestCodeResponse, error)
	ConfirmCode(ctx context.Context, in *ConfirmCodeRequest, opts ...grpc.CallOption) (*ConfirmCodeResponse, error)
}

type verificationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVerificationServiceClient(cc grpc.ClientConnInterface) VerificationServiceClient {
	return &verificationServiceClient{cc}
}

func (c *verificationServiceClient) RequestCode(ctx context.Context, in *RequestCodeRequest, opts ...grpc.CallOption) (*RequestCodeResponse, error) {
	out := new(RequestCodeResponse)
	if err := c.cc.Invoke(ctx, VerificationService_RequestCode_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *verificationServiceClient) ConfirmCode(ctx context.Context, in *ConfirmCodeRequest, opts ...grpc.CallOption) (*ConfirmCodeResponse, error) {
	out := new(ConfirmCodeResponse)
	if err := c.cc.Invoke(ctx, VerificationService_ConfirmCode_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// BallotService

type BallotServiceServer interface {
	CheckToken(context.Context, *CheckTokenRequest) (*CheckTokenResponse, error)
}

type UnimplementedBallotServiceServer struct{}

func (UnimplementedBallotServiceServer) CheckToken(context.Context, *CheckTokenRequest) (*CheckTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckToken not implemented")
}

func RegisterBallotServiceServer(s grpc.ServiceRegistrar, srv BallotServiceServer) {
	s.RegisterService(&BallotService_ServiceDesc, srv)
}

func _BallotService_CheckToken_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckTokenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BallotServiceServer).CheckToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: BallotService_CheckToken_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BallotServiceServer).CheckToken(ctx, req.(*CheckTokenRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var BallotService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "voteauth.verification.v1.BallotService",
	HandlerType: (*BallotServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckToken", Handler: _BallotService_CheckToken_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "voteauth/verification/v1",
}

type BallotServiceClient interface {
	CheckToken(ctx context.Context, in *CheckTokenRequest, opts ...grpc.CallOption) (*CheckTokenResponse, error)
}

type ballotServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBallotServiceClient(cc grpc.ClientConnInterface) BallotServiceClient {
	return &ballotServiceClient{cc}
}

func (c *ballotServiceClient) CheckToken(ctx context.Context, in *CheckTokenRequest, opts ...grpc.CallOption) (*CheckTokenResponse, error) {
	out := new(CheckTokenResponse)
	if err := c.cc.Invoke(ctx, BallotService_CheckToken_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// DevService

type DevServiceServer interface {
	GetCode(context.Context, *GetCodeRequest) (*GetCodeResponse, error)
}

type UnimplementedDevServiceServer struct{}

func (UnimplementedDevServiceServer) GetCode(context.Context, *GetCodeRequest) (*GetCodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCode not implemented")
}

func RegisterDevServiceServer(s grpc.ServiceRegistrar, srv DevServiceServer) {
	s.RegisterService(&DevService_ServiceDesc, srv)
}

func _DevService_GetCode_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DevServiceServer).GetCode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DevService_GetCode_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DevServiceServer).GetCode(ctx, req.(*GetCodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var DevService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "voteauth.verification.v1.DevService",
	HandlerType: (*DevServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCode", Handler: _DevService_GetCode_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "voteauth/verification/v1",
}

type DevServiceClient interface {
	GetCode(ctx context.Context, in *GetCodeRequest, opts ...grpc.CallOption) (*GetCodeResponse, error)
}

type devServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDevServiceClient(cc grpc.ClientConnInterface) DevServiceClient {
	return &devServiceClient{cc}
}

func (c *devServiceClient) GetCode(ctx context.Context, in *GetCodeRequest, opts ...grpc.CallOption) (*GetCodeResponse, error) {
	out := new(GetCodeResponse)
	if err := c.cc.Invoke(ctx, DevService_GetCode_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
