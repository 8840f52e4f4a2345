package domain

import (
	"strings"
	"testing"
)

func TestMarkScamIsSticky(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-1")
	s.MarkScam("phishing")

	if !s.ScamDetected || s.ScamType != "phishing" {
		t.Fatalf("Expected scam detected with type phishing, got %v/%q", s.ScamDetected, s.ScamType)
	}

	// A later mark with no type keeps the flag and the previous label.
	s.MarkScam("")
	if !s.ScamDetected || s.ScamType != "phishing" {
		t.Errorf("Sticky flag or label lost: %v/%q", s.ScamDetected, s.ScamType)
	}

	// The label itself is latest-wins.
	s.MarkScam("upi fraud")
	if s.ScamType != "upi fraud" {
		t.Errorf("Expected updated label, got %q", s.ScamType)
	}
}

func TestAppendNoteSkipsBlank(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-1")
	s.AppendNote("  ")
	s.AppendNote("asked for OTP")

	if len(s.AgentNotes) != 1 || s.AgentNotes[0] != "asked for OTP" {
		t.Errorf("Unexpected notes: %v", s.AgentNotes)
	}
}

func TestRecentNotes(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-1")
	for _, n := range []string{"one", "two", "three", "four"} {
		s.AppendNote(n)
	}

	recent := s.RecentNotes(3)
	if len(recent) != 3 || recent[0] != "two" {
		t.Errorf("Expected last three notes, got %v", recent)
	}

	all := s.RecentNotes(10)
	if len(all) != 4 {
		t.Errorf("Expected all notes, got %v", all)
	}
}

func TestBuildReport(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-1")
	s.MarkScam("bank fraud")
	s.AppendNote("claims to be bank staff")
	s.Intelligence.Merge(IntelligenceRecord{UPIIDs: []string{"scammer@upi"}})

	payload := s.BuildReport(7)

	if payload.SessionID != "sess-1" || !payload.ScamDetected {
		t.Errorf("Unexpected payload identity: %+v", payload)
	}
	if payload.TotalMessagesExchanged != 7 {
		t.Errorf("Expected 7 messages, got %d", payload.TotalMessagesExchanged)
	}
	if !strings.HasPrefix(payload.AgentNotes, "Scam type: bank fraud.") {
		t.Errorf("Unexpected notes prefix: %q", payload.AgentNotes)
	}
	if !strings.Contains(payload.AgentNotes, "claims to be bank staff") {
		t.Errorf("Expected note text in %q", payload.AgentNotes)
	}

	// The snapshot must not alias live intelligence.
	s.Intelligence.Merge(IntelligenceRecord{UPIIDs: []string{"late@upi"}})
	if len(payload.ExtractedIntelligence.UPIIDs) != 1 {
		t.Errorf("Report payload aliased live record: %v", payload.ExtractedIntelligence.UPIIDs)
	}
}

func TestBuildReportUnknownScamType(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-1")
	s.MarkScam("")
	payload := s.BuildReport(2)
	if !strings.HasPrefix(payload.AgentNotes, "Scam type: unknown.") {
		t.Errorf("Unexpected notes: %q", payload.AgentNotes)
	}
}
