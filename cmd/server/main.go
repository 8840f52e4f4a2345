// scambait - Agentic Scam Honeypot Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avee-h/scambait/internal/api"
	"github.com/avee-h/scambait/internal/config"
	"github.com/avee-h/scambait/internal/engine"
	"github.com/avee-h/scambait/internal/generator"
	"github.com/avee-h/scambait/internal/middleware"
	"github.com/avee-h/scambait/internal/notify"
	"github.com/avee-h/scambait/internal/registry"
	"github.com/avee-h/scambait/internal/report"
	"github.com/avee-h/scambait/internal/store"
	"github.com/avee-h/scambait/internal/telegram"
	"github.com/avee-h/scambait/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Conversation generator: upstream model when a key is configured,
	// rule-based responder otherwise.
	var gen generator.Generator
	var analyzer generator.Analyzer
	if cfg.Generator.APIKey != "" {
		client := generator.NewClient(cfg.Generator.BaseURL, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.Timeout)
		gen = client
		analyzer = client
		slog.Info("Generator configured", "base_url", cfg.Generator.BaseURL, "model", cfg.Generator.Model)
	} else {
		rules := generator.NewRuleResponder()
		gen = rules
		analyzer = rules
		slog.Info("No generator API key set, using rule-based responder")
	}

	reporter, err := report.NewWebhookSink(cfg.CallbackURL, cfg.ReportTimeout)
	if err != nil {
		slog.Error("Failed to initialize reporting sink", "error", err)
		os.Exit(1)
	}

	var archive *report.Archive
	if cfg.ReportArchive.Enabled {
		archive, err = report.NewArchive(cfg.ReportArchive.Path)
		if err != nil {
			slog.Error("Failed to initialize report archive", "error", err)
			os.Exit(1)
		}
	}

	hub := notify.NewHub(5 * time.Second)
	sessions := registry.New(repo)

	eng := engine.New(sessions, gen, reporter, hub, archive, engine.Options{
		MinEngagementTurns: cfg.MinEngagementTurns,
		GeneratorTimeout:   cfg.Generator.Timeout,
		ReportTimeout:      cfg.ReportTimeout,
	})

	// Initialize handlers.
	handler := api.NewHandler(eng, analyzer, repo)
	wsHandler := notify.NewWebSocketHandler(hub, cfg.FrontendURL, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional Telegram channel.
	if cfg.Telegram.Token != "" {
		bot, err := telegram.New(cfg.Telegram.Token, eng, analyzer)
		if err != nil {
			slog.Error("Failed to start Telegram bot", "error", err)
			os.Exit(1)
		}
		go bot.Run(ctx)
	}

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	// Public routes.
	handler.RegisterHealth(r)

	// API routes behind the shared key.
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.APIKey))
		handler.RegisterRoutes(r)
	})

	// WebSocket endpoint for live dashboard observers.
	r.Get("/ws/dashboard", wsHandler.ServeHTTP)

	// Serve the embedded dashboard page.
	r.Handle("/", web.DashboardHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout; dashboard websockets are long-lived
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
