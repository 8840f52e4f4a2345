// Package engine drives one inbound scammer message through extraction,
// intelligence merging, reply generation, escalation, and reporting. It owns
// the session state machine: new -> engaged -> escalated -> reported.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/avee-h/scambait/internal/domain"
	"github.com/avee-h/scambait/internal/extract"
	"github.com/avee-h/scambait/internal/generator"
	"github.com/avee-h/scambait/internal/notify"
	"github.com/avee-h/scambait/internal/registry"
	"github.com/avee-h/scambait/internal/report"
)

// Options tune engine behavior.
type Options struct {
	// MinEngagementTurns is the turn count at which escalation can fire even
	// without extracted indicators.
	MinEngagementTurns int
	// GeneratorTimeout bounds the reply-generation call.
	GeneratorTimeout time.Duration
	// ReportTimeout bounds one delivery attempt to the reporting sink.
	ReportTimeout time.Duration
}

// DefaultOptions returns the default engine tuning.
func DefaultOptions() Options {
	return Options{
		MinEngagementTurns: 3,
		GeneratorTimeout:   30 * time.Second,
		ReportTimeout:      10 * time.Second,
	}
}

// Engine is the conversation orchestrator.
type Engine struct {
	sessions *registry.Registry
	gen      generator.Generator
	reporter report.Reporter
	hub      *notify.Hub
	archive  *report.Archive // optional
	opts     Options
}

// New creates an engine. archive may be nil to disable report archiving.
func New(sessions *registry.Registry, gen generator.Generator, reporter report.Reporter, hub *notify.Hub, archive *report.Archive, opts Options) *Engine {
	if opts.MinEngagementTurns <= 0 {
		opts.MinEngagementTurns = DefaultOptions().MinEngagementTurns
	}
	if opts.GeneratorTimeout <= 0 {
		opts.GeneratorTimeout = DefaultOptions().GeneratorTimeout
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = DefaultOptions().ReportTimeout
	}
	return &Engine{
		sessions: sessions,
		gen:      gen,
		reporter: reporter,
		hub:      hub,
		archive:  archive,
		opts:     opts,
	}
}

// HandleMessage processes one inbound event to completion and returns the
// reply to send back to the scammer. It never fails for malformed or
// ambiguous message content; only infrastructure errors (session storage)
// surface as errors.
func (e *Engine) HandleMessage(ctx context.Context, event domain.InboundEvent) (string, error) {
	var reply string

	err := e.sessions.WithSession(ctx, event.SessionID, func(sess *domain.Session) error {
		if sess.State == domain.StateNew {
			sess.State = domain.StateEngaged
		}

		found := extract.Extract(event.Message.Text)

		// Fold in transcript history we have not seen before. The merge is
		// idempotent, so a stale mark would be redundant, not wrong.
		if len(event.ConversationHistory) > sess.HistorySeen {
			for _, msg := range event.ConversationHistory[sess.HistorySeen:] {
				if msg.Sender == domain.SenderScammer {
					found.Merge(extract.Extract(msg.Text))
				}
			}
			sess.HistorySeen = len(event.ConversationHistory)
		}

		intelChanged := sess.Intelligence.Merge(found)
		sess.TurnCount++

		// Any extracted indicator marks the session as a scam; the flag is
		// sticky for the session's lifetime.
		if !found.IsEmpty() {
			sess.MarkScam("")
		}

		reply = e.generateReply(ctx, event, sess, &intelChanged)

		e.maybeReport(ctx, event, sess)

		if intelChanged {
			intel := sess.Intelligence.Clone()
			e.hub.Publish(notify.Event{
				SessionID:    sess.SessionID,
				Message:      event.Message.Text,
				UPIIDs:       intel.UPIIDs,
				PhoneNumbers: intel.PhoneNumbers,
				Timestamp:    time.Now().UTC().Format(time.RFC3339),
			})
		}

		sess.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return "", err
	}

	return reply, nil
}

// generateReply asks the generator for the next turn. On any failure the turn
// degrades to the fixed fallback reply and the session's classification is
// left untouched.
func (e *Engine) generateReply(ctx context.Context, event domain.InboundEvent, sess *domain.Session, intelChanged *bool) string {
	transcript := make([]domain.Message, 0, len(event.ConversationHistory)+1)
	transcript = append(transcript, event.ConversationHistory...)
	transcript = append(transcript, event.Message)

	genCtx, cancel := context.WithTimeout(ctx, e.opts.GeneratorTimeout)
	defer cancel()

	res, err := e.gen.Generate(genCtx, generator.Request{
		SessionID:    sess.SessionID,
		Transcript:   transcript,
		Intelligence: sess.Intelligence.Clone(),
		TurnCount:    sess.TurnCount,
		Metadata:     event.Metadata,
	})
	if err != nil {
		slog.Warn("Generation failed, using fallback reply", "session_id", sess.SessionID, "turn", sess.TurnCount, "error", err)
		return generator.FallbackReply
	}

	if res.IsScam {
		sess.MarkScam(res.ScamType)
	}
	sess.AppendNote(res.Reasoning)
	if len(res.SuspiciousKeywords) > 0 {
		if sess.Intelligence.Merge(domain.IntelligenceRecord{SuspiciousKeywords: res.SuspiciousKeywords}) {
			*intelChanged = true
		}
	}

	return res.Reply
}

// maybeReport runs the escalation check and, while delivery has not been
// confirmed, attempts to send the report. Failure leaves ReportSent false so
// a later escalation-eligible turn retries.
func (e *Engine) maybeReport(ctx context.Context, event domain.InboundEvent, sess *domain.Session) {
	if !sess.ScamDetected {
		return
	}
	if sess.Intelligence.IsEmpty() && sess.TurnCount < e.opts.MinEngagementTurns {
		return
	}

	if sess.State == domain.StateEngaged {
		sess.State = domain.StateEscalated
		slog.Info("Session escalated", "session_id", sess.SessionID, "turn", sess.TurnCount, "scam_type", sess.ScamType)
	}

	if sess.ReportSent {
		return
	}

	// Current exchange counts the inbound message and our reply.
	payload := sess.BuildReport(len(event.ConversationHistory) + 2)

	repCtx, cancel := context.WithTimeout(ctx, e.opts.ReportTimeout)
	defer cancel()

	if err := e.reporter.Deliver(repCtx, payload); err != nil {
		slog.Warn("Report delivery failed, will retry on a later turn", "session_id", sess.SessionID, "error", err)
		return
	}

	sess.ReportSent = true
	sess.State = domain.StateReported
	slog.Info("Report delivered", "session_id", sess.SessionID, "total_messages", payload.TotalMessagesExchanged)

	if e.archive != nil {
		if err := e.archive.Append(payload); err != nil {
			slog.Warn("Failed to archive report", "session_id", sess.SessionID, "error", err)
		}
	}
}

// GetSession returns a snapshot of the session for id.
func (e *Engine) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return e.sessions.Get(ctx, id)
}

// ResetSession destroys the session for id. Subsequent messages with the same
// id start a fresh session.
func (e *Engine) ResetSession(ctx context.Context, id string) error {
	return e.sessions.Reset(ctx, id)
}
