// MyMCP Recorder - browser recording and tool generation server
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mymcpme/recorder/internal/api"
	"github.com/mymcpme/recorder/internal/config"
	"github.com/mymcpme/recorder/internal/extension"
	"github.com/mymcpme/recorder/internal/identity"
	"github.com/mymcpme/recorder/internal/middleware"
	"github.com/mymcpme/recorder/internal/recorder"
	"github.com/mymcpme/recorder/internal/registry"
	"github.com/mymcpme/recorder/internal/store"
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

	// Initialize services.
	coord := recorder.NewCoordinator(repo, logger)
	links := extension.NewLinkManager(coord, cfg.HeartbeatMax, logger)
	monitor := extension.NewMonitor(links, coord, cfg.ProbeInterval, cfg.ProbeFailures, logger)

	// Tool registry gRPC client (optional).
	var registrar api.Registrar
	if cfg.RegistryAddr != "" {
		slog.Info("Connecting to tool registry via gRPC", "address", cfg.RegistryAddr)
		registryClient, err := registry.NewClient(cfg.RegistryAddr, logger)
		if err != nil {
			slog.Warn("Tool registry unreachable, tools will be saved locally only", "error", err)
		} else {
			defer registryClient.Close()
			registrar = registryClient
		}
	} else {
		slog.Info("Tool registry disabled (TOOL_REGISTRY_ADDR not set)")
	}

	// Initialize handlers.
	baseHandler := api.NewHandler(repo)
	healthHandler := api.NewHealthHandler(repo)
	recorderHandler := api.NewRecorderHandler(baseHandler, coord, links, monitor)
	toolsHandler := api.NewToolsHandler(baseHandler, coord, links, registrar)
	wsHandler := extension.NewWebSocketHandler(links, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Public routes.
	healthHandler.RegisterHealth(r)

	// Recorder routes.
	recorderHandler.RegisterRoutes(r)
	toolsHandler.RegisterRoutes(r)

	// WebSocket endpoint for the capture agent.
	r.Get("/ws/extension", wsHandler.ServeHTTP)

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // websocket dispatches can outlive any fixed deadline
		IdleTimeout:  120 * time.Second,
	}

	// Start background workers.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go monitor.Run(ctx)
	slog.Info("Connection monitor started", "probe_interval", cfg.ProbeInterval)

	recorder.StartJanitor(ctx, repo, coord, cfg.SessionTTL, logger)
	slog.Info("Session janitor started", "session_ttl", cfg.SessionTTL)

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
