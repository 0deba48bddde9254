package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.Cooldown() != 60*time.Second {
		t.Errorf("Cooldown = %v, want 60s", cfg.Cooldown())
	}
	if cfg.CodeTTL() != 300*time.Second {
		t.Errorf("CodeTTL = %v, want 300s", cfg.CodeTTL())
	}
	if cfg.OTPLength != 6 {
		t.Errorf("OTPLength = %d, want 6", cfg.OTPLength)
	}
	if cfg.BallotTokenBytes != 32 {
		t.Errorf("BallotTokenBytes = %d, want 32", cfg.BallotTokenBytes)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.OTPMaxAttempts != 0 {
		t.Errorf("OTPMaxAttempts = %d, want 0", cfg.OTPMaxAttempts)
	}
	if got := cfg.NotifyChannelsList(); !reflect.DeepEqual(got, []string{"email"}) {
		t.Errorf("NotifyChannelsList = %v, want [email]", got)
	}
	if cfg.AuditKafkaTopic != "voteauth-audit" {
		t.Errorf("AuditKafkaTopic = %q, want voteauth-audit", cfg.AuditKafkaTopic)
	}
	if cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should default to false")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":9090")
	os.Setenv("OTP_COOLDOWN", "90s")
	os.Setenv("OTP_TTL", "10m")
	os.Setenv("OTP_LENGTH", "8")
	os.Setenv("NOTIFY_CHANNELS", "Email, sms,email")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.Cooldown() != 90*time.Second {
		t.Errorf("Cooldown = %v, want 90s", cfg.Cooldown())
	}
	if cfg.CodeTTL() != 10*time.Minute {
		t.Errorf("CodeTTL = %v, want 10m", cfg.CodeTTL())
	}
	if cfg.OTPLength != 8 {
		t.Errorf("OTPLength = %d, want 8", cfg.OTPLength)
	}
	if got := cfg.NotifyChannelsList(); !reflect.DeepEqual(got, []string{"email", "sms"}) {
		t.Errorf("NotifyChannelsList = %v, want [email sms]", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"dev mode in production", map[string]string{"OTP_RETURN_TO_CLIENT": "true", "APP_ENV": "production"}},
		{"zero cooldown", map[string]string{"OTP_COOLDOWN": "0s"}},
		{"bad ttl", map[string]string{"OTP_TTL": "soon"}},
		{"short code", map[string]string{"OTP_LENGTH": "3"}},
		{"long code", map[string]string{"OTP_LENGTH": "11"}},
		{"weak token", map[string]string{"BALLOT_TOKEN_BYTES": "8"}},
		{"bcrypt cost", map[string]string{"BCRYPT_COST": "40"}},
		{"negative attempts", map[string]string{"OTP_MAX_ATTEMPTS": "-1"}},
		{"unknown channel", map[string]string{"NOTIFY_CHANNELS": "pigeon"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			defer os.Clearenv()
			if _, err := Load(); err == nil {
				t.Fatal("Load should fail")
			}
		})
	}
}

func TestKafkaBrokersList(t *testing.T) {
	var nilCfg *Config
	if nilCfg.KafkaBrokersList() != nil {
		t.Error("nil config should return nil brokers")
	}
	cfg := &Config{KafkaBrokers: " a:9092, ,b:9092 "}
	if got := cfg.KafkaBrokersList(); !reflect.DeepEqual(got, []string{"a:9092", "b:9092"}) {
		t.Errorf("KafkaBrokersList = %v", got)
	}
}
