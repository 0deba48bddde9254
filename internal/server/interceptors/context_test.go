package interceptors

import (
	"context"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestGetRequestID(t *testing.T) {
	if _, ok := GetRequestID(context.Background()); ok {
		t.Error("GetRequestID should return false when not set")
	}
	id, ok := GetRequestID(WithRequestID(context.Background(), "req-1"))
	if !ok || id != "req-1" {
		t.Errorf("GetRequestID = %q, %v", id, ok)
	}
}

func TestRequestIDUnary(t *testing.T) {
	interceptor := RequestIDUnary()
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}
	capture := func(ctx context.Context, req interface{}) (interface{}, error) {
		id, _ := GetRequestID(ctx)
		return id, nil
	}

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"propagates caller id", "abc-123", true},
		{"generates when absent", "", false},
		{"replaces oversize id", strings.Repeat("x", 200), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.incoming != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(RequestIDHeader, tc.incoming))
			}
			resp, err := interceptor(ctx, nil, info, capture)
			if err != nil {
				t.Fatalf("interceptor: %v", err)
			}
			got := resp.(string)
			if tc.keep && got != tc.incoming {
				t.Errorf("request id = %q, want %q", got, tc.incoming)
			}
			if !tc.keep && (got == "" || got == tc.incoming) {
				t.Errorf("request id = %q, want a generated id", got)
			}
		})
	}
}
