package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"voteauth/internal/devotp"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (r *recordingNotifier) Send(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestParseChannel(t *testing.T) {
	for in, want := range map[string]Channel{"email": ChannelEmail, " SMS ": ChannelSMS} {
		got, err := ParseChannel(in)
		if err != nil || got != want {
			t.Errorf("ParseChannel(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseChannel("fax"); err == nil {
		t.Error("unknown channel should fail")
	}
}

func TestMulti_RoutesByChannel(t *testing.T) {
	email := &recordingNotifier{}
	sms := &recordingNotifier{err: errors.New("gateway down")}
	m := NewMulti(map[Channel]Notifier{ChannelEmail: email, ChannelSMS: sms})

	err := m.Send(context.Background(), Message{Channels: []Channel{ChannelEmail, ChannelSMS}})
	if err == nil {
		t.Fatal("sms failure should be reported")
	}
	if email.count() != 1 || sms.count() != 1 {
		t.Errorf("email = %d, sms = %d; want 1 each", email.count(), sms.count())
	}

	if err := m.Send(context.Background(), Message{Channels: []Channel{ChannelEmail}}); err != nil {
		t.Errorf("email only: %v", err)
	}
	if err := NewMulti(nil).Send(context.Background(), Message{Channels: []Channel{ChannelEmail}}); err == nil {
		t.Error("unrouted channel should fail")
	}
}

func TestDevNotifier_StoresCodeByRegNo(t *testing.T) {
	store := devotp.NewMemoryStore()
	n := NewDevNotifier(store)
	if err := n.Send(context.Background(), Message{RegNo: "REG001", Code: "482913", ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if code, ok := store.Get(context.Background(), "REG001"); !ok || code != "482913" {
		t.Errorf("stored code = %q, %v", code, ok)
	}
}

func TestDispatcher_DeliversInBackground(t *testing.T) {
	rec := &recordingNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(rec, nil)
	for i := 0; i < 3; i++ {
		d.DispatchAsync(Message{RegNo: "REG001"})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if rec.count() != 3 {
		t.Errorf("delivered %d, want 3", rec.count())
	}
}

type blockingNotifier struct{ release chan struct{} }

func (b *blockingNotifier) Send(ctx context.Context, msg Message) error {
	<-b.release
	return nil
}

func TestDispatcher_WaitHonorsContext(t *testing.T) {
	b := &blockingNotifier{release: make(chan struct{})}
	d := NewDispatcher(b, nil)
	d.DispatchAsync(Message{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want deadline exceeded", err)
	}
	close(b.release)
	if err := d.Wait(context.Background()); err != nil {
		t.Errorf("Wait after release: %v", err)
	}
}

func TestDispatcher_NilSafe(t *testing.T) {
	var d *Dispatcher
	d.DispatchAsync(Message{})
	if err := d.Wait(context.Background()); err != nil {
		t.Errorf("nil Wait: %v", err)
	}
	NewDispatcher(nil, nil).DispatchAsync(Message{})
}
