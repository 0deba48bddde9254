package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records verification counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	codesIssued         metric.Int64Counter
	confirmations       metric.Int64Counter
	rateLimited         metric.Int64Counter
	notificationFailure metric.Int64Counter
	tokensRedeemed      metric.Int64Counter
}

// NewMetrics creates the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	if m.codesIssued, err = meter.Int64Counter("voteauth.codes.issued",
		metric.WithDescription("One-time codes issued")); err != nil {
		return nil, err
	}
	if m.confirmations, err = meter.Int64Counter("voteauth.confirmations",
		metric.WithDescription("ConfirmCode outcomes")); err != nil {
		return nil, err
	}
	if m.rateLimited, err = meter.Int64Counter("voteauth.codes.rate_limited",
		metric.WithDescription("RequestCode calls rejected by the cooldown")); err != nil {
		return nil, err
	}
	if m.notificationFailure, err = meter.Int64Counter("voteauth.notifications.failed",
		metric.WithDescription("Code deliveries that failed")); err != nil {
		return nil, err
	}
	if m.tokensRedeemed, err = meter.Int64Counter("voteauth.ballot_tokens.redeemed",
		metric.WithDescription("Ballot token redemption outcomes")); err != nil {
		return nil, err
	}
	return m, nil
}

// CodeIssued counts one issued code delivered over channels.
func (m *Metrics) CodeIssued(ctx context.Context, channels []string) {
	if m == nil {
		return
	}
	m.codesIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("method", strings.Join(channels, ","))))
}

// ConfirmOutcome counts one ConfirmCode result, e.g. "issued", "reissued", "invalid_code".
func (m *Metrics) ConfirmOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.confirmations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RateLimited counts one cooldown rejection.
func (m *Metrics) RateLimited(ctx context.Context) {
	if m == nil {
		return
	}
	m.rateLimited.Add(ctx, 1)
}

// NotificationFailed counts one failed delivery.
func (m *Metrics) NotificationFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.notificationFailure.Add(ctx, 1)
}

// TokenRedeemed counts one redemption attempt with its outcome, e.g. "consumed", "already_consumed".
func (m *Metrics) TokenRedeemed(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.tokensRedeemed.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
