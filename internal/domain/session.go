package domain

import (
	"fmt"
	"strings"
	"time"
)

// State tracks where a session is in its lifecycle.
type State string

const (
	// StateNew is the implicit state before the first turn is processed.
	StateNew State = "new"
	// StateEngaged means at least one turn has been processed.
	StateEngaged State = "engaged"
	// StateEscalated means the escalation rule has fired but delivery of the
	// report has not been confirmed yet.
	StateEscalated State = "escalated"
	// StateReported means the reporting sink accepted the final report.
	StateReported State = "reported"
)

// Session holds the accumulated state for one tracked conversation.
// All mutation goes through the orchestrator while the registry holds
// the per-session lock.
type Session struct {
	SessionID    string
	State        State
	TurnCount    int
	ScamDetected bool
	ScamType     string
	Intelligence IntelligenceRecord
	AgentNotes   []string
	// HistorySeen is a high-water mark of conversation history entries already
	// folded into Intelligence, so replayed transcripts are not re-extracted.
	HistorySeen int
	ReportSent  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession creates a zeroed session for an id.
func NewSession(sessionID string) *Session {
	now := time.Now().UTC()
	return &Session{
		SessionID: sessionID,
		State:     StateNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkScam sets the sticky scam flag. The flag never reverts; the type label
// is latest-wins.
func (s *Session) MarkScam(scamType string) {
	s.ScamDetected = true
	if scamType != "" {
		s.ScamType = scamType
	}
}

// AppendNote records a free-text annotation from the agent.
func (s *Session) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	s.AgentNotes = append(s.AgentNotes, note)
}

// RecentNotes returns the last n agent notes.
func (s *Session) RecentNotes(n int) []string {
	if n >= len(s.AgentNotes) {
		return s.AgentNotes
	}
	return s.AgentNotes[len(s.AgentNotes)-n:]
}

// ReportPayload is the final-intelligence document delivered to the
// reporting sink. Derived from session state, never stored.
type ReportPayload struct {
	SessionID              string             `json:"sessionId"`
	ScamDetected           bool               `json:"scamDetected"`
	TotalMessagesExchanged int                `json:"totalMessagesExchanged"`
	ExtractedIntelligence  IntelligenceRecord `json:"extractedIntelligence"`
	AgentNotes             string             `json:"agentNotes"`
}

// BuildReport snapshots the session into a report payload. totalMessages is
// supplied by the caller because it is derived from the inbound event's
// transcript, not from the session turn counter.
func (s *Session) BuildReport(totalMessages int) ReportPayload {
	notes := fmt.Sprintf("Scam type: %s.", s.scamTypeOrUnknown())
	if recent := s.RecentNotes(3); len(recent) > 0 {
		notes += " " + strings.Join(recent, " ")
	}
	return ReportPayload{
		SessionID:              s.SessionID,
		ScamDetected:           s.ScamDetected,
		TotalMessagesExchanged: totalMessages,
		ExtractedIntelligence:  s.Intelligence.Clone(),
		AgentNotes:             notes,
	}
}

func (s *Session) scamTypeOrUnknown() string {
	if s.ScamType == "" {
		return "unknown"
	}
	return s.ScamType
}
