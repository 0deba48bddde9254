// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Required by the server, migrate and seed commands.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTPCooldown is the minimum time between two code issuances for one voter (e.g. "60s").
	OTPCooldown string `mapstructure:"OTP_COOLDOWN"`
	// OTPTTL is how long an issued code stays valid (e.g. "300s").
	OTPTTL string `mapstructure:"OTP_TTL"`
	// OTPLength is the number of digits in a one-time code (4–10).
	OTPLength int `mapstructure:"OTP_LENGTH"`
	// OTPMaxAttempts is the number of wrong guesses after which a code stops being active. 0 disables the lockout.
	OTPMaxAttempts int `mapstructure:"OTP_MAX_ATTEMPTS"`
	// BallotTokenBytes is the number of random bytes in a ballot token (hex-encoded, so the token is twice as long).
	BallotTokenBytes int `mapstructure:"BALLOT_TOKEN_BYTES"`
	// BcryptCost is the bcrypt cost factor (4–31) used to hash one-time codes.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// NotifyChannels is a comma-separated list of delivery channels (email, sms).
	NotifyChannels string `mapstructure:"NOTIFY_CHANNELS"`
	// SMTPHost is the SMTP relay host for the email channel.
	SMTPHost string `mapstructure:"SMTP_HOST"`
	// SMTPPort is the SMTP relay port (default 587).
	SMTPPort int `mapstructure:"SMTP_PORT"`
	// SMTPUsername and SMTPPassword enable PLAIN auth when both are set.
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	// SMTPFrom is the envelope and header sender address.
	SMTPFrom string `mapstructure:"SMTP_FROM"`
	// SMSLocalAPIKey is the API key for SMS Local. Required when the sms channel is enabled.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for SMS Local.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS Local API base URL.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`
	// OTPReturnToClient when true enables dev code mode: codes are kept in memory and readable via DevService.GetCode.
	// Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`

	// EligibilityPolicyFile is an optional path to a Rego module replacing the built-in eligibility policy.
	EligibilityPolicyFile string `mapstructure:"ELIGIBILITY_POLICY_FILE"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses for the audit event stream.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events.
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the audit worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// Worker-only: Loki URL the audit worker pushes to (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext to the collector even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTP_COOLDOWN", "60s")
	v.SetDefault("OTP_TTL", "300s")
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_MAX_ATTEMPTS", 0)
	v.SetDefault("BALLOT_TOKEN_BYTES", 32)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("NOTIFY_CHANNELS", "email")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMS_LOCAL_API_KEY", "")
	v.SetDefault("SMS_LOCAL_SENDER", "")
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://www.smslocal.com/dev/bulkV2")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("ELIGIBILITY_POLICY_FILE", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "voteauth-audit")
	v.SetDefault("KAFKA_GROUP_ID", "voteauth-audit-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "voteauth")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}
	if d, err := time.ParseDuration(cfg.OTPCooldown); err != nil || d <= 0 {
		return nil, fmt.Errorf("config: OTP_COOLDOWN must be a positive duration, got %q", cfg.OTPCooldown)
	}
	if d, err := time.ParseDuration(cfg.OTPTTL); err != nil || d <= 0 {
		return nil, fmt.Errorf("config: OTP_TTL must be a positive duration, got %q", cfg.OTPTTL)
	}
	if cfg.OTPLength < 4 || cfg.OTPLength > 10 {
		return nil, errors.New("config: OTP_LENGTH must be between 4 and 10")
	}
	if cfg.OTPMaxAttempts < 0 {
		return nil, errors.New("config: OTP_MAX_ATTEMPTS must not be negative")
	}
	if cfg.BallotTokenBytes < 16 {
		return nil, errors.New("config: BALLOT_TOKEN_BYTES must be at least 16")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 10
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	for _, ch := range cfg.NotifyChannelsList() {
		if ch != "email" && ch != "sms" {
			return nil, fmt.Errorf("config: unknown notify channel %q", ch)
		}
	}
	if len(cfg.NotifyChannelsList()) == 0 {
		return nil, errors.New("config: NOTIFY_CHANNELS must name at least one channel")
	}

	return &cfg, nil
}

// Cooldown parses OTPCooldown. Returns 60s if unset or invalid.
func (c *Config) Cooldown() time.Duration {
	d, err := time.ParseDuration(c.OTPCooldown)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// CodeTTL parses OTPTTL. Returns 300s if unset or invalid.
func (c *Config) CodeTTL() time.Duration {
	d, err := time.ParseDuration(c.OTPTTL)
	if err != nil || d <= 0 {
		return 300 * time.Second
	}
	return d
}

// NotifyChannelsList returns the lower-cased, de-duplicated delivery channels.
func (c *Config) NotifyChannelsList() []string {
	return splitList(strings.ToLower(c.NotifyChannels))
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list disables the audit event stream.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
