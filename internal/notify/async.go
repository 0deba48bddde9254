package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"voteauth/internal/telemetry"
)

// sendTimeout bounds one background delivery.
const sendTimeout = 30 * time.Second

// Dispatcher sends messages in the background so RequestCode returns without waiting for delivery.
type Dispatcher struct {
	notifier Notifier
	metrics  *telemetry.Metrics
	wg       sync.WaitGroup
}

// NewDispatcher returns a Dispatcher for notifier. metrics may be nil.
func NewDispatcher(notifier Notifier, metrics *telemetry.Metrics) *Dispatcher {
	return &Dispatcher{notifier: notifier, metrics: metrics}
}

// DispatchAsync sends msg on a new goroutine with a background context. Failures are logged and counted,
// never returned: code validity does not depend on delivery.
func (d *Dispatcher) DispatchAsync(msg Message) {
	if d == nil || d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := d.notifier.Send(ctx, msg); err != nil {
			log.Printf("notify: delivery to %s failed: %v", msg.RegNo, err)
			d.metrics.NotificationFailed(ctx)
		}
	}()
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
