// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/avee-h/scambait/internal/domain"
)

// Repository defines the interface for persisting honeypot session records.
// The engine only needs single-record get/upsert/delete; no transaction
// spans more than one session.
type Repository interface {
	// GetSession retrieves a session by id. Returns (nil, nil) when absent.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// UpsertSession creates or updates a session record.
	UpsertSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes a session record. Deleting an absent session
	// is not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
