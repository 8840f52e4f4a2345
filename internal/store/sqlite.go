package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avee-h/scambait/internal/domain"
	"github.com/avee-h/scambait/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Serializes session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS honeypot_sessions (
		session_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		turn_count INTEGER NOT NULL DEFAULT 0,
		scam_detected INTEGER NOT NULL DEFAULT 0,
		scam_type TEXT,
		bank_accounts TEXT NOT NULL DEFAULT '[]',
		upi_ids TEXT NOT NULL DEFAULT '[]',
		phishing_links TEXT NOT NULL DEFAULT '[]',
		phone_numbers TEXT NOT NULL DEFAULT '[]',
		suspicious_keywords TEXT NOT NULL DEFAULT '[]',
		agent_notes TEXT NOT NULL DEFAULT '[]',
		history_seen INTEGER NOT NULL DEFAULT 0,
		report_sent INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_honeypot_sessions_updated ON honeypot_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `
		SELECT session_id, state, turn_count, scam_detected, scam_type,
		       bank_accounts, upi_ids, phishing_links, phone_numbers,
		       suspicious_keywords, agent_notes, history_seen, report_sent,
		       created_at, updated_at
		FROM honeypot_sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var sess domain.Session
	var state string
	var scamType sql.NullString
	var accounts, upiIDs, links, phones, keywords, notes string
	var createdAt, updatedAt int64

	err := row.Scan(
		&sess.SessionID, &state, &sess.TurnCount, &sess.ScamDetected, &scamType,
		&accounts, &upiIDs, &links, &phones,
		&keywords, &notes, &sess.HistorySeen, &sess.ReportSent,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	sess.State = domain.State(state)
	sess.ScamType = scamType.String
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)

	if err := unmarshalList(accounts, &sess.Intelligence.BankAccounts); err != nil {
		return nil, fmt.Errorf("decode bank_accounts: %w", err)
	}
	if err := unmarshalList(upiIDs, &sess.Intelligence.UPIIDs); err != nil {
		return nil, fmt.Errorf("decode upi_ids: %w", err)
	}
	if err := unmarshalList(links, &sess.Intelligence.PhishingLinks); err != nil {
		return nil, fmt.Errorf("decode phishing_links: %w", err)
	}
	if err := unmarshalList(phones, &sess.Intelligence.PhoneNumbers); err != nil {
		return nil, fmt.Errorf("decode phone_numbers: %w", err)
	}
	if err := unmarshalList(keywords, &sess.Intelligence.SuspiciousKeywords); err != nil {
		return nil, fmt.Errorf("decode suspicious_keywords: %w", err)
	}
	if err := unmarshalList(notes, &sess.AgentNotes); err != nil {
		return nil, fmt.Errorf("decode agent_notes: %w", err)
	}

	return &sess, nil
}

// UpsertSession creates or updates a session record.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.Session) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	accounts, err := marshalList(session.Intelligence.BankAccounts)
	if err != nil {
		return err
	}
	upiIDs, err := marshalList(session.Intelligence.UPIIDs)
	if err != nil {
		return err
	}
	links, err := marshalList(session.Intelligence.PhishingLinks)
	if err != nil {
		return err
	}
	phones, err := marshalList(session.Intelligence.PhoneNumbers)
	if err != nil {
		return err
	}
	keywords, err := marshalList(session.Intelligence.SuspiciousKeywords)
	if err != nil {
		return err
	}
	notes, err := marshalList(session.AgentNotes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO honeypot_sessions (
			session_id, state, turn_count, scam_detected, scam_type,
			bank_accounts, upi_ids, phishing_links, phone_numbers,
			suspicious_keywords, agent_notes, history_seen, report_sent,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			turn_count = excluded.turn_count,
			scam_detected = excluded.scam_detected,
			scam_type = COALESCE(excluded.scam_type, honeypot_sessions.scam_type),
			bank_accounts = excluded.bank_accounts,
			upi_ids = excluded.upi_ids,
			phishing_links = excluded.phishing_links,
			phone_numbers = excluded.phone_numbers,
			suspicious_keywords = excluded.suspicious_keywords,
			agent_notes = excluded.agent_notes,
			history_seen = excluded.history_seen,
			report_sent = excluded.report_sent,
			updated_at = excluded.updated_at`

	var scamType interface{}
	if session.ScamType != "" {
		scamType = session.ScamType
	}

	_, err = s.db.ExecContext(ctx, query,
		session.SessionID, string(session.State), session.TurnCount,
		session.ScamDetected, scamType,
		accounts, upiIDs, links, phones, keywords, notes,
		session.HistorySeen, session.ReportSent,
		session.CreatedAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes a session record.
// Implements retry logic with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := s.deleteSessionOnce(ctx, sessionID)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) {
			if i < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<i)
				time.Sleep(delay)
				continue
			}
		}

		return fmt.Errorf("failed to delete session %s after %d attempts: %w", sessionID, maxRetries, err)
	}

	return nil
}

func (s *SQLiteStore) deleteSessionOnce(ctx context.Context, sessionID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `DELETE FROM honeypot_sessions WHERE session_id = ?`
	_, err := s.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

func unmarshalList(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*dst = list
	}
	return nil
}
