// Package api provides HTTP handlers for the scambait API.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avee-h/scambait/internal/domain"
	"github.com/avee-h/scambait/internal/engine"
	"github.com/avee-h/scambait/internal/generator"
	"github.com/avee-h/scambait/internal/registry"
	"github.com/avee-h/scambait/internal/store"
	"github.com/go-chi/chi/v5"
)

// Handler serves the honeypot, session admin, and analysis endpoints.
type Handler struct {
	engine   *engine.Engine
	analyzer generator.Analyzer
	repo     store.Repository
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(eng *engine.Engine, analyzer generator.Analyzer, repo store.Repository) *Handler {
	return &Handler{
		engine:   eng,
		analyzer: analyzer,
		repo:     repo,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/honeypot", h.HandleHoneypot)
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/session/{sessionID}", h.HandleGetSession)
		r.Delete("/session/{sessionID}", h.HandleResetSession)
	})
}

// RegisterHealth registers the health endpoint.
func (h *Handler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.HandleHealth)
}

type honeypotResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// HandleHoneypot processes one inbound scammer message and returns the
// honeypot's reply. Malformed or ambiguous message content never produces an
// error response; the endpoint always answers with some reply text.
func (h *Handler) HandleHoneypot(w http.ResponseWriter, r *http.Request) {
	var event domain.InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.SessionID == "" {
		Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	reply, err := h.engine.HandleMessage(r.Context(), event)
	if err != nil {
		// Infrastructure failure: degrade to the fallback reply rather than
		// surface an error to the counterpart.
		slog.Error("Failed to process honeypot event", "session_id", event.SessionID, "error", err)
		JSON(w, http.StatusOK, honeypotResponse{Status: "success", Reply: generator.FallbackReply})
		return
	}

	JSON(w, http.StatusOK, honeypotResponse{Status: "success", Reply: reply})
}

type sessionStateResponse struct {
	SessionID             string                    `json:"sessionId"`
	State                 string                    `json:"state"`
	TurnCount             int                       `json:"turnCount"`
	ScamDetected          bool                      `json:"scamDetected"`
	ScamType              string                    `json:"scamType,omitempty"`
	ReportSent            bool                      `json:"reportSent"`
	ExtractedIntelligence domain.IntelligenceRecord `json:"extractedIntelligence"`
	AgentNotes            []string                  `json:"agentNotes,omitempty"`
	CreatedAt             time.Time                 `json:"createdAt"`
	UpdatedAt             time.Time                 `json:"updatedAt"`
}

// HandleGetSession returns current session state for debugging.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.engine.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			Error(w, http.StatusNotFound, "session not found")
			return
		}
		slog.Error("Failed to load session", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	JSON(w, http.StatusOK, sessionStateResponse{
		SessionID:             sess.SessionID,
		State:                 string(sess.State),
		TurnCount:             sess.TurnCount,
		ScamDetected:          sess.ScamDetected,
		ScamType:              sess.ScamType,
		ReportSent:            sess.ReportSent,
		ExtractedIntelligence: sess.Intelligence,
		AgentNotes:            sess.AgentNotes,
		CreatedAt:             sess.CreatedAt,
		UpdatedAt:             sess.UpdatedAt,
	})
}

// HandleResetSession destroys a session so the next message with the same id
// starts fresh. This intentionally discards accumulated intelligence.
func (h *Handler) HandleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.engine.ResetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			Error(w, http.StatusNotFound, "session not found")
			return
		}
		slog.Error("Failed to reset session", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "reset", "sessionId": sessionID})
}

type analyzeRequest struct {
	Message string `json:"message"`
}

// HandleAnalyze classifies a single message without creating a session.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), req.Message)
	if err != nil {
		slog.Warn("Analysis via model failed, using heuristic fallback", "error", err)
		analysis, _ = generator.NewRuleResponder().Analyze(r.Context(), req.Message)
	}

	JSON(w, http.StatusOK, analysis)
}

// HandleHealth reports service and database health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "scambait"})
}
