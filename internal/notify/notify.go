// Package notify delivers one-time codes to voters over email and SMS.
// Delivery is fire-and-forget from the caller's point of view; failures are logged and counted.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Channel is a delivery channel for a one-time code.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// ParseChannel maps a configured channel name (email, sms) to a Channel.
func ParseChannel(name string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "email":
		return ChannelEmail, nil
	case "sms":
		return ChannelSMS, nil
	}
	return "", fmt.Errorf("notify: unknown channel %q", name)
}

// ErrNoRecipient is returned when a message lacks the address required by a channel.
var ErrNoRecipient = errors.New("notify: no recipient for channel")

// Message is one code delivery to one voter. Code is plaintext and must never be logged.
type Message struct {
	RegNo     string
	Name      string
	Email     string
	Phone     string
	Code      string
	ExpiresAt time.Time
	Channels  []Channel
}

// Notifier delivers a message. Implementations must not log the code.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// body renders the text sent over every channel.
func body(msg Message) string {
	mins := int(time.Until(msg.ExpiresAt).Round(time.Minute).Minutes())
	if mins < 1 {
		mins = 1
	}
	return fmt.Sprintf("Your voter verification code is %s. It expires in %d minutes. Do not share it with anyone.", msg.Code, mins)
}
