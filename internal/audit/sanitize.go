package audit

import (
	"strings"

	ballotdomain "voteauth/internal/ballot/domain"
)

// redactedKeys are payload keys that may carry a plaintext code. They are dropped entirely.
var redactedKeys = map[string]bool{
	"otp":      true,
	"code":     true,
	"otphash":  true,
	"password": true,
}

// tokenKeys are payload keys that may carry a ballot token. Only a prefix is kept.
var tokenKeys = map[string]bool{
	"ballottoken": true,
	"token":       true,
}

// Sanitize returns a copy of payload without plaintext codes and with ballot tokens truncated.
func Sanitize(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		key := strings.ToLower(k)
		if redactedKeys[key] {
			continue
		}
		if s, ok := v.(string); ok && tokenKeys[key] && !strings.HasSuffix(s, "...") {
			v = ballotdomain.TokenPrefix(s)
		}
		out[k] = v
	}
	return out
}
