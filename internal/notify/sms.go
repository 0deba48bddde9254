package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const smsTimeout = 15 * time.Second

// DefaultSMSLocalURL is the SMS Local bulk API endpoint.
const DefaultSMSLocalURL = "https://www.smslocal.com/dev/bulkV2"

// SMSLocalNotifier sends codes via the SMS Local API (route=otp).
type SMSLocalNotifier struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewSMSLocalNotifier returns a notifier that uses the given API key and optional base URL/sender.
func NewSMSLocalNotifier(apiKey, baseURL, sender string) (*SMSLocalNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("notify: SMS_LOCAL_API_KEY is required for the sms channel")
	}
	if baseURL == "" {
		baseURL = DefaultSMSLocalURL
	}
	return &SMSLocalNotifier{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: smsTimeout},
	}, nil
}

// Send posts the code to msg.Phone. The phone number is reduced to digits.
func (c *SMSLocalNotifier) Send(ctx context.Context, msg Message) error {
	phone := digitsOnly(msg.Phone)
	if phone == "" {
		return fmt.Errorf("%w %s", ErrNoRecipient, ChannelSMS)
	}
	payload := map[string]any{
		"route":     "otp",
		"numbers":   phone,
		"variables": msg.Code,
	}
	if c.Sender != "" {
		payload["sender_id"] = c.Sender
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: sms request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
