package domain

import (
	"testing"
	"time"
)

func TestVerification_StateAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Minute)
	tests := []struct {
		name string
		v    *Verification
		want State
	}{
		{"nil", nil, StateNone},
		{"issued", &Verification{ExpiresAt: now.Add(time.Minute)}, StateIssued},
		{"expires exactly now", &Verification{ExpiresAt: now}, StateIssued},
		{"expired", &Verification{ExpiresAt: earlier}, StateExpired},
		{"verified", &Verification{ExpiresAt: now.Add(time.Minute), VerifiedAt: &earlier}, StateVerified},
		{"consumed", &Verification{ExpiresAt: earlier, VerifiedAt: &earlier, ConsumedAt: &earlier}, StateConsumed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.StateAt(now); got != tc.want {
				t.Errorf("StateAt = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestVerification_IsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &Verification{ExpiresAt: now.Add(time.Minute)}
	if !v.IsActive(now, 0) {
		t.Error("fresh code should be active")
	}
	if v.IsActive(now.Add(2*time.Minute), 0) {
		t.Error("expired code should not be active")
	}
	v.FailedAttempts = 3
	if !v.IsActive(now, 0) {
		t.Error("attempts are ignored when the lockout is disabled")
	}
	if v.IsActive(now, 3) {
		t.Error("code should retire after max attempts")
	}
	var nilV *Verification
	if nilV.IsActive(now, 0) {
		t.Error("nil verification is never active")
	}
}
