package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends codes through an SMTP relay.
type EmailNotifier struct {
	addr     string
	host     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewEmailNotifier returns an SMTP notifier. PLAIN auth is used when username and password are both set.
func NewEmailNotifier(host string, port int, username, password, from string) (*EmailNotifier, error) {
	if host == "" || from == "" {
		return nil, fmt.Errorf("notify: SMTP_HOST and SMTP_FROM are required for the email channel")
	}
	if port == 0 {
		port = 587
	}
	n := &EmailNotifier{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		host:     host,
		from:     from,
		sendMail: smtp.SendMail,
	}
	if username != "" && password != "" {
		n.auth = smtp.PlainAuth("", username, password, host)
	}
	return n, nil
}

// Send emails the code to msg.Email.
func (n *EmailNotifier) Send(ctx context.Context, msg Message) error {
	if msg.Email == "" {
		return fmt.Errorf("%w %s", ErrNoRecipient, ChannelEmail)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.sendMail(n.addr, n.auth, n.from, []string{msg.Email}, n.render(msg)); err != nil {
		return fmt.Errorf("notify: smtp send: %w", err)
	}
	return nil
}

func (n *EmailNotifier) render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Email)
	b.WriteString("Subject: Your voter verification code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	if msg.Name != "" {
		fmt.Fprintf(&b, "Hello %s,\r\n\r\n", msg.Name)
	}
	b.WriteString(body(msg))
	b.WriteString("\r\n")
	return []byte(b.String())
}
