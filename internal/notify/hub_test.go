package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type chanObserver struct {
	ch chan []byte
}

func (o *chanObserver) Send(_ context.Context, data []byte) error {
	o.ch <- data
	return nil
}

type failingObserver struct{}

func (failingObserver) Send(context.Context, []byte) error {
	return errors.New("connection closed")
}

func testEvent() Event {
	return Event{
		SessionID:    "sess-1",
		Message:      "pay scammer@upi",
		UPIIDs:       []string{"scammer@upi"},
		PhoneNumbers: []string{"9876543210"},
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
}

func TestPublishFansOutToAllObservers(t *testing.T) {
	t.Parallel()

	hub := NewHub(time.Second)
	a := &chanObserver{ch: make(chan []byte, 1)}
	b := &chanObserver{ch: make(chan []byte, 1)}
	hub.Register(a)
	hub.Register(b)

	hub.Publish(testEvent())

	for _, obs := range []*chanObserver{a, b} {
		select {
		case data := <-obs.ch:
			var got Event
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Failed to decode event: %v", err)
			}
			if got.SessionID != "sess-1" || len(got.UPIIDs) != 1 {
				t.Errorf("Unexpected event: %+v", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Observer did not receive the event")
		}
	}
}

func TestFailingObserverIsDropped(t *testing.T) {
	t.Parallel()

	hub := NewHub(time.Second)
	hub.Register(failingObserver{})
	if hub.Count() != 1 {
		t.Fatalf("Expected one observer, got %d", hub.Count())
	}

	hub.Publish(testEvent())

	deadline := time.After(2 * time.Second)
	for hub.Count() != 0 {
		select {
		case <-deadline:
			t.Fatalf("Observer not dropped, count=%d", hub.Count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestUnregisterUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	hub := NewHub(time.Second)
	hub.Unregister("no-such-observer")
	if hub.Count() != 0 {
		t.Errorf("Expected empty hub, got %d", hub.Count())
	}
}

func TestPublishDoesNotBlockOnSlowObserver(t *testing.T) {
	t.Parallel()

	hub := NewHub(50 * time.Millisecond)
	// Unbuffered channel nobody reads: Send stalls in its delivery goroutine.
	hub.Register(&chanObserver{ch: make(chan []byte)})

	done := make(chan struct{})
	go func() {
		hub.Publish(testEvent())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow observer")
	}
}
