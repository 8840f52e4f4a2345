package report

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avee-h/scambait/internal/domain"
)

func samplePayload() domain.ReportPayload {
	return domain.ReportPayload{
		SessionID:              "sess-1",
		ScamDetected:           true,
		TotalMessagesExchanged: 6,
		ExtractedIntelligence: domain.IntelligenceRecord{
			UPIIDs:       []string{"scammer@upi"},
			PhoneNumbers: []string{"9876543210"},
		},
		AgentNotes: "Scam type: upi fraud.",
	}
}

func TestWebhookDeliverSuccess(t *testing.T) {
	t.Parallel()

	var got domain.ReportPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewWebhookSink failed: %v", err)
	}
	if err := sink.Deliver(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if got.SessionID != "sess-1" || len(got.ExtractedIntelligence.UPIIDs) != 1 {
		t.Errorf("Unexpected payload received: %+v", got)
	}
}

func TestWebhookDeliverRetriesTransientFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, _ := NewWebhookSink(srv.URL, time.Second)
	if err := sink.Deliver(context.Background(), samplePayload()); err != nil {
		t.Fatalf("Deliver failed despite recovery: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls.Load())
	}
}

func TestWebhookDeliverExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink, _ := NewWebhookSink(srv.URL, time.Second)
	if err := sink.Deliver(context.Background(), samplePayload()); err == nil {
		t.Fatal("Expected error after exhausted retries")
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestWebhookDeliverHonorsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink, _ := NewWebhookSink(srv.URL, time.Second)
	if err := sink.Deliver(ctx, samplePayload()); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWebhookRequiresURL(t *testing.T) {
	t.Parallel()

	if _, err := NewWebhookSink("", time.Second); err == nil {
		t.Error("Expected error for empty url")
	}
}

func TestArchiveAppendsNDJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "archive.ndjson")
	a, err := NewArchive(path)
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}

	if err := a.Append(samplePayload()); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	second := samplePayload()
	second.SessionID = "sess-2"
	if err := a.Append(second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open archive failed: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var entry struct {
			ReportedAt string               `json:"reported_at"`
			Payload    domain.ReportPayload `json:"payload"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", lines, err)
		}
		if entry.ReportedAt == "" || entry.Payload.SessionID == "" {
			t.Errorf("Incomplete entry on line %d: %+v", lines, entry)
		}
	}
	if lines != 2 {
		t.Errorf("Expected 2 archive lines, got %d", lines)
	}
}
