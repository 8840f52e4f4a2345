// Package registry provides concurrency-safe lookup and lifecycle for
// honeypot sessions. Work on one session id is serialized; sessions with
// different ids never contend with each other.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avee-h/scambait/internal/domain"
	"github.com/avee-h/scambait/internal/store"
)

// ErrNotFound is returned for lookups and resets of unknown session ids.
var ErrNotFound = errors.New("session not found")

// entry carries the per-id lock. sess is nil until the first turn hydrates
// it, and again after a reset; every read or write of sess happens under mu,
// so turns and resets for one id apply strictly in the order they acquire it.
type entry struct {
	mu   sync.Mutex
	sess *domain.Session
}

// Registry keeps live session state in memory and writes it through to the
// backing repository after every mutation.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	repo    store.Repository
}

// New creates a registry backed by repo.
func New(repo store.Repository) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		repo:    repo,
	}
}

// WithSession runs fn with exclusive access to the session for id, creating
// the session if it does not exist yet. The per-session lock is held for the
// whole call, so concurrent events for the same id apply in order. On success
// the mutated session is persisted.
func (r *Registry) WithSession(ctx context.Context, id string, fn func(*domain.Session) error) error {
	e := r.getEntry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		sess, err := r.hydrate(ctx, id)
		if err != nil {
			return err
		}
		e.sess = sess
	}

	if err := fn(e.sess); err != nil {
		return err
	}

	if err := r.repo.UpsertSession(ctx, e.sess); err != nil {
		// In-memory state stays authoritative; persistence catches up on the
		// next successful upsert.
		slog.Warn("failed to persist session", "session_id", id, "error", err)
	}
	return nil
}

// Get returns a point-in-time snapshot of the session for id.
func (r *Registry) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		stored, err := r.repo.GetSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if stored == nil {
			return nil, ErrNotFound
		}
		return snapshot(stored), nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		// Entry exists but nothing is live (reset, or a turn lost the race to
		// hydrate); only the store can say whether the session exists.
		stored, err := r.repo.GetSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if stored == nil {
			return nil, ErrNotFound
		}
		return snapshot(stored), nil
	}
	return snapshot(e.sess), nil
}

// Reset destroys the session for id in memory and in the backing store. It
// takes the same per-id lock as WithSession, so an in-flight turn completes
// first and a queued turn afterward starts a fresh session. This
// intentionally discards accumulated intelligence.
func (r *Registry) Reset(ctx context.Context, id string) error {
	e := r.getEntry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		stored, err := r.repo.GetSession(ctx, id)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if stored == nil {
			return ErrNotFound
		}
	}

	if err := r.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	e.sess = nil
	slog.Info("Session reset", "session_id", id)
	return nil
}

// getEntry resolves the lock entry for id, creating an empty one on first
// touch. Entries are never removed; the session they guard is.
func (r *Registry) getEntry(id string) *entry {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock: another goroutine may have won the race.
	if e, ok := r.entries[id]; ok {
		return e
	}
	e = &entry{}
	r.entries[id] = e
	return e
}

// hydrate loads the stored session for id, or creates a fresh one. Called
// with the entry lock held so hydration cannot race a reset's row delete.
func (r *Registry) hydrate(ctx context.Context, id string) (*domain.Session, error) {
	stored, err := r.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if stored != nil {
		return stored, nil
	}
	slog.Info("Session created", "session_id", id)
	return domain.NewSession(id), nil
}

func snapshot(s *domain.Session) *domain.Session {
	cp := *s
	cp.Intelligence = s.Intelligence.Clone()
	cp.AgentNotes = append([]string(nil), s.AgentNotes...)
	return &cp
}
