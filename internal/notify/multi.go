package notify

import (
	"context"
	"errors"
	"fmt"
)

// Multi routes a message to the notifier registered for each of its channels.
type Multi struct {
	byChannel map[Channel]Notifier
}

// NewMulti returns a Multi with the given channel routes.
func NewMulti(routes map[Channel]Notifier) *Multi {
	m := &Multi{byChannel: make(map[Channel]Notifier, len(routes))}
	for ch, n := range routes {
		if n != nil {
			m.byChannel[ch] = n
		}
	}
	return m
}

// Send delivers on every channel of msg and joins the failures. A failing channel does not stop the others.
func (m *Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, ch := range msg.Channels {
		n, ok := m.byChannel[ch]
		if !ok {
			errs = append(errs, fmt.Errorf("notify: no notifier for channel %s", ch))
			continue
		}
		if err := n.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
		}
	}
	return errors.Join(errs...)
}
