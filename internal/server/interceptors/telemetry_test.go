package interceptors

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"voteauth/internal/telemetry/domain"
)

type chanEmitter struct {
	events chan *domain.Event
}

func (c *chanEmitter) Emit(ctx context.Context, event *domain.Event) error {
	c.events <- event
	return nil
}

func TestTelemetryUnary_EmitsEvent(t *testing.T) {
	em := &chanEmitter{events: make(chan *domain.Event, 1)}
	interceptor := TelemetryUnary(em, nil)
	ctx := WithRequestID(context.Background(), "req-9")
	handlerErr := status.Error(codes.NotFound, "Registration number not found")

	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/RequestCode"}, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, handlerErr
	})
	if !errors.Is(err, handlerErr) {
		t.Fatalf("interceptor must return the handler error, got %v", err)
	}

	select {
	case ev := <-em.events:
		if ev.EventType != "grpc_request" || ev.Source != "grpc_interceptor" {
			t.Errorf("event = %+v", ev)
		}
		var meta grpcRequestMetadata
		if err := json.Unmarshal(ev.Metadata, &meta); err != nil {
			t.Fatalf("metadata: %v", err)
		}
		if meta.FullMethod != "/svc/RequestCode" || meta.StatusCode != "NotFound" || meta.RequestID != "req-9" {
			t.Errorf("metadata = %+v", meta)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event emitted")
	}
}

func TestTelemetryUnary_SkipAndNil(t *testing.T) {
	em := &chanEmitter{events: make(chan *domain.Event, 1)}
	ok := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := TelemetryUnary(em, map[string]bool{info.FullMethod: true})(context.Background(), nil, info, ok)
	if err != nil || resp != "ok" {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}
	if _, err := TelemetryUnary(nil, nil)(context.Background(), nil, info, ok); err != nil {
		t.Fatalf("nil emitter: %v", err)
	}
	select {
	case ev := <-em.events:
		t.Errorf("skipped method emitted %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
