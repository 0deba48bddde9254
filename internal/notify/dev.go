package notify

import (
	"context"

	"voteauth/internal/devotp"
)

// DevNotifier keeps codes in a devotp.Store instead of delivering them. Dev code mode only.
type DevNotifier struct {
	store devotp.Store
}

// NewDevNotifier returns a notifier that writes into store.
func NewDevNotifier(store devotp.Store) *DevNotifier {
	return &DevNotifier{store: store}
}

// Send stores the code keyed by registration number until it expires.
func (n *DevNotifier) Send(ctx context.Context, msg Message) error {
	n.store.Put(ctx, msg.RegNo, msg.Code, msg.ExpiresAt)
	return nil
}
