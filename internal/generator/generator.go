// Package generator produces the honeypot's next reply and a scam-likelihood
// judgment for a conversation. The upstream model is an external collaborator;
// every failure mode degrades to a fixed fallback so a turn always yields a
// reply.
package generator

import (
	"context"
	"errors"

	"github.com/avee-h/scambait/internal/domain"
)

// FallbackReply is returned when generation fails. The persona stays in
// character even when the upstream is down.
const FallbackReply = "Sir, mujhe samajh nahi aaya. Thoda detail mein bataiye?"

// ErrMalformedOutput indicates the upstream answered but its output could not
// be parsed into a Result.
var ErrMalformedOutput = errors.New("generator output could not be parsed")

// Request carries everything the generator needs for one turn.
type Request struct {
	SessionID    string
	Transcript   []domain.Message // prior history plus the current message, in order
	Intelligence domain.IntelligenceRecord
	TurnCount    int
	Metadata     *domain.Metadata
}

// Result is a successful generation outcome.
type Result struct {
	IsScam             bool
	ScamType           string
	Confidence         float64
	Reply              string
	SuspiciousKeywords []string
	Reasoning          string
}

// Analysis is a one-shot classification of a single message, outside any
// session.
type Analysis struct {
	IsScam      bool     `json:"is_scam"`
	Confidence  int      `json:"confidence"`
	ScamType    string   `json:"scam_type,omitempty"`
	RedFlags    []string `json:"red_flags"`
	Explanation string   `json:"explanation"`
	Advice      string   `json:"advice"`
}

// Generator produces the next honeypot reply for a session turn.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Analyzer classifies a single message without session state.
type Analyzer interface {
	Analyze(ctx context.Context, message string) (*Analysis, error)
}
