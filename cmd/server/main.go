// Aria - AI Virtual Assistant Server
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

	"github.com/arialabs/aria-server/internal/api"
	"github.com/arialabs/aria-server/internal/assistant"
	"github.com/arialabs/aria-server/internal/auth"
	"github.com/arialabs/aria-server/internal/config"
	"github.com/arialabs/aria-server/internal/identity"
	"github.com/arialabs/aria-server/internal/middleware"
	"github.com/arialabs/aria-server/internal/model"
	"github.com/arialabs/aria-server/internal/store"
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

	// Initialize the assistant pipeline (optional: requires a Gemini key).
	var askHandler *assistant.Handler
	aiEnabled := false
	if cfg.GeminiAPIKey != "" {
		gen, err := model.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ModelTimeout)
		if err != nil {
			slog.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}

		historyStore := assistant.NewHistoryStore(repo, cfg.HistoryLimit)
		svc := assistant.NewService(repo, historyStore, gen)
		limiter := assistant.NewRateLimiter(cfg.AskRateLimit, cfg.AskRateWindow)
		askHandler = assistant.NewHandler(svc, limiter)
		aiEnabled = true
		slog.Info("Assistant pipeline initialized", "model", cfg.GeminiModel, "history_limit", cfg.HistoryLimit)
	}
	if !aiEnabled {
		slog.Info("Assistant disabled (GEMINI_API_KEY not set)")
	}

	// Initialize handlers.
	authHandler := auth.NewHandler(repo, []byte(cfg.JWTSecret), cfg.IsDevelopment())
	profileHandler := api.NewProfileHandler(repo)
	healthHandler := api.NewHealthHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	// Public routes.
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Aria assistant backend is running"))
	})
	healthHandler.RegisterHealth(r)
	authHandler.RegisterRoutes(r)

	// Authenticated routes.
	r.Group(func(pr chi.Router) {
		pr.Use(identity.Middleware([]byte(cfg.JWTSecret)))
		profileHandler.RegisterRoutes(pr)
		if askHandler != nil {
			askHandler.RegisterRoutes(pr)
		}
	})

	// Create server. The model call dominates latency, so the write timeout
	// must exceed the configured model timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ModelTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
