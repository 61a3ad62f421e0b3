package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	internalhttp "github.com/EternisAI/lockfleet/internal/api/http"
	"github.com/EternisAI/lockfleet/internal/api/http/handler"
	"github.com/EternisAI/lockfleet/internal/audit"
	"github.com/EternisAI/lockfleet/internal/auth"
	"github.com/EternisAI/lockfleet/internal/credentials"
	"github.com/EternisAI/lockfleet/internal/db"
	"github.com/EternisAI/lockfleet/internal/devices"
	"github.com/EternisAI/lockfleet/internal/lockcrypto"
	"github.com/EternisAI/lockfleet/internal/ticket"
	"github.com/EternisAI/lockfleet/internal/tuya"
	"github.com/EternisAI/lockfleet/internal/tuya/sandbox"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("Lockfleet Server", "version", AppVersion, "protocol", lockcrypto.Protocol, "sandbox", config.Tuya.Sandbox)

	ctx := context.Background()

	tp, err := initTracer(ctx, config.Otel)
	if err != nil {
		slog.Error("Failed to initialize tracer", "error", err)
		os.Exit(1)
	}

	requester, err := newRequester(config.Tuya)
	if err != nil {
		slog.Error("Failed to create vendor client", "error", err)
		os.Exit(1)
	}

	recorders := audit.Multi{audit.LogRecorder{}}
	var auditLister handler.AuditLister
	if config.Audit.Enabled {
		if err := db.RunMigrations(config.Audit.DB.Url, config.Audit.DB.Schema); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		pool, err := db.InitDB(ctx, config.Audit.DB)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := audit.NewPostgresRecorder(pool)
		recorders = append(recorders, pg)
		auditLister = pg
	}

	services := &internalhttp.Services{
		Auth:        auth.NewService(config.Auth),
		Credentials: credentials.NewService(requester, ticket.NewBroker(requester), config.Tuya.AccessSecret, recorders),
		Devices:     devices.NewSynchronizer(requester, config.Tuya.AppUID, config.Logs),
		Audit:       auditLister,
		Sandbox:     config.Tuya.Sandbox,
	}

	allowOrigins := config.Http.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"PUT", "PATCH", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !slices.Contains(allowOrigins, "*"),
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Http.Port),
		Handler:           otelhttp.NewHandler(engine, "lockfleet"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Error("Tracer shutdown error", "error", err)
		}
	}

	slog.Info("Shutdown complete")
}

// newRequester returns the in-process sandbox vendor or the HTTP client.
func newRequester(cfg tuya.Config) (tuya.Requester, error) {
	if cfg.Sandbox {
		slog.Warn("Using sandbox vendor, no real locks will be contacted")
		return sandbox.New(cfg.AccessSecret, cfg.AppUID), nil
	}
	return tuya.NewClient(cfg)
}

