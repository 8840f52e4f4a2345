// Package notify broadcasts live intelligence updates to dashboard
// observers. Delivery is best effort: no replay, no backpressure on the
// publisher, and a failing observer is dropped without affecting the rest.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one live update pushed to observers.
type Event struct {
	SessionID    string   `json:"session_id"`
	Message      string   `json:"message"`
	UPIIDs       []string `json:"upi_ids"`
	PhoneNumbers []string `json:"phone_numbers"`
	Timestamp    string   `json:"timestamp"`
}

// Observer receives serialized events. Send must be safe for concurrent use.
type Observer interface {
	Send(ctx context.Context, data []byte) error
}

// Hub fans events out to the registered observers.
type Hub struct {
	mu          sync.RWMutex
	observers   map[string]Observer
	sendTimeout time.Duration
}

// NewHub creates a hub. sendTimeout bounds how long one slow observer can
// hold a delivery goroutine.
func NewHub(sendTimeout time.Duration) *Hub {
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	return &Hub{
		observers:   make(map[string]Observer),
		sendTimeout: sendTimeout,
	}
}

// Register adds an observer and returns its id for Unregister.
func (h *Hub) Register(obs Observer) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.observers[id] = obs
	h.mu.Unlock()
	slog.Info("Observer registered", "observer_id", id)
	return id
}

// Unregister removes an observer. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, ok := h.observers[id]
	delete(h.observers, id)
	h.mu.Unlock()
	if ok {
		slog.Info("Observer unregistered", "observer_id", id)
	}
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Publish delivers the event to every observer registered at call time.
// Each observer gets its own goroutine so one stall never blocks another;
// an observer whose Send fails is deregistered silently.
func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode notification event", "error", err)
		return
	}

	h.mu.RLock()
	targets := make(map[string]Observer, len(h.observers))
	for id, obs := range h.observers {
		targets[id] = obs
	}
	h.mu.RUnlock()

	for id, obs := range targets {
		go func(id string, obs Observer) {
			ctx, cancel := context.WithTimeout(context.Background(), h.sendTimeout)
			defer cancel()
			if err := obs.Send(ctx, data); err != nil {
				slog.Debug("Observer send failed, dropping", "observer_id", id, "error", err)
				h.Unregister(id)
			}
		}(id, obs)
	}
}
