package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func TestMetrics_Counters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	m.CodeIssued(ctx, []string{"EMAIL", "SMS"})
	m.ConfirmOutcome(ctx, "issued")
	m.ConfirmOutcome(ctx, "invalid_code")
	m.ConfirmOutcome(ctx, "invalid_code")
	m.RateLimited(ctx)
	m.NotificationFailed(ctx)
	m.TokenRedeemed(ctx, "consumed")

	sums := collect(t, reader)
	issued := sums["voteauth.codes.issued"]
	if len(issued.DataPoints) != 1 || issued.DataPoints[0].Value != 1 {
		t.Fatalf("codes.issued = %+v", issued.DataPoints)
	}
	if v, _ := issued.DataPoints[0].Attributes.Value(attribute.Key("method")); v.AsString() != "EMAIL,SMS" {
		t.Errorf("method attribute = %q", v.AsString())
	}

	byOutcome := map[string]int64{}
	for _, dp := range sums["voteauth.confirmations"].DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("outcome"))
		byOutcome[v.AsString()] = dp.Value
	}
	if byOutcome["issued"] != 1 || byOutcome["invalid_code"] != 2 {
		t.Errorf("confirmations = %v", byOutcome)
	}
	for _, name := range []string{"voteauth.codes.rate_limited", "voteauth.notifications.failed", "voteauth.ballot_tokens.redeemed"} {
		if dps := sums[name].DataPoints; len(dps) != 1 || dps[0].Value != 1 {
			t.Errorf("%s = %+v", name, dps)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.CodeIssued(ctx, nil)
	m.ConfirmOutcome(ctx, "issued")
	m.RateLimited(ctx)
	m.NotificationFailed(ctx)
	m.TokenRedeemed(ctx, "consumed")
}
