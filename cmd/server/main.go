package main

import (
	"comms-hub/audience"
	"comms-hub/auth"
	"comms-hub/contract"
	"comms-hub/directory"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"comms-hub/infrastructure/email"
	"comms-hub/internal"
	"comms-hub/repositories"
	"comms-hub/runtime"
	"comms-hub/runtime/workers"
	"comms-hub/services"
	"comms-hub/transport"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/time/rate"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern ensures 'defer' statements (like database cleanup) run before the program exits
// and keeps the initialization logic testable apart from the entry point.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Fan-out core
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(registry, logger)
	jobRepository := repositories.NewJobRepository(db, logger)
	store := repositories.NewCommunicationStore(db, logger)

	dir := directory.NewStatic()
	if config.SendgridAPIKey == "" {
		devFixtures(config, dir, logger)
	}
	resolver := audience.NewResolver(dir, logger)
	dispatcher := runtime.NewDispatcher(logger, resolver, broadcaster, jobRepository, store)

	channel := deliveryChannel(config, logger)
	limiter := rate.NewLimiter(rate.Limit(config.SendRatePerSecond), 1)

	// 4. Supervision
	telemetry := make(chan event.DomainEvent, config.BufferSize)
	sup := workers.NewSupervisor(logger, telemetry, config.RestartInterval)
	sup.Add(workers.NewTelemetryWorker(telemetry, logger))
	for i := 0; i < config.NumberOfWorkers; i++ {
		sup.Add(workers.NewDeliveryWorker(
			jobRepository, channel, store, limiter, telemetry, logger,
			config.PollInterval, config.AttemptTimeout,
			config.MaxAttempts, config.BackoffBase, config.BackoffCap,
			config.BatchSize,
		))
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting supervised workers")
		sup.Run(ctx)
	}()

	// 6. Websocket transport
	comms := services.NewCommsService(store, dispatcher, broadcaster, logger)
	wsServer := transport.NewServer(registry, comms, []byte(config.JWTSecret), config.ConnectionBufferSize, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", wsServer)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}

	// Error channel to capture ListenAndServe issues asynchronously.
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting websocket server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	wsServer.Drain(registry)
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

// devFixtures seeds a demo tenant and logs a ready-to-use session token so
// a fresh checkout can connect without a host backend.
func devFixtures(config internal.Config, dir *directory.Static, logger *slog.Logger) {
	dir.Seed(
		domain.RecipientIdentity{ID: "U1", TenantID: "T1", Address: "u1@demo.local", Role: "teacher"},
		domain.RecipientIdentity{ID: "U2", TenantID: "T1", Address: "u2@demo.local", Role: "parent"},
	)

	token, err := auth.GenerateToken([]byte(config.JWTSecret), "U1", "T1", []string{"teacher"}, config.AuthTokenDuration)
	if err != nil {
		logger.Warn("Generating dev token failed", "error", err)
		return
	}
	logger.Info("Dev fixtures loaded", "tenant", "T1", "recipient", "U1", "token", token)
}

// deliveryChannel picks Sendgrid when a key is configured and falls back to
// the console channel for local development.
func deliveryChannel(config internal.Config, logger *slog.Logger) contract.DeliveryChannel {
	if config.SendgridAPIKey != "" {
		return email.NewSendgridService(config.SendgridAPIKey, config.DefaultFromName, config.DefaultFromEmail, config.AppName, logger)
	}
	logger.Warn("SENDGRID_API_KEY not set, emails go to the console")
	return email.NewConsoleService(logger)
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
