/*
Package main is the entry point for the coLAN server.

It is responsible for loading configuration, initializing the global logging
system, wiring the room, presence, message, file, and identity components
together, and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KYoiRyi/coLAN/internal/app/files"
	"github.com/KYoiRyi/coLAN/internal/app/identity"
	"github.com/KYoiRyi/coLAN/internal/app/msglog"
	"github.com/KYoiRyi/coLAN/internal/app/persist"
	"github.com/KYoiRyi/coLAN/internal/app/presence"
	"github.com/KYoiRyi/coLAN/internal/app/room"
	"github.com/KYoiRyi/coLAN/internal/app/storage"
	"github.com/KYoiRyi/coLAN/internal/configs"
	"github.com/KYoiRyi/coLAN/internal/handler"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Str("storage_backend", cfg.StorageBackend).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Durable state lives as flat JSON collections in the data directory.
	store, err := persist.NewFileStore(cfg.DataDir)
	if err != nil {
		logx.Fatal(err, "Failed to initialize data directory")
	}

	// Identity backend: Postgres when a DSN is configured, in-memory otherwise.
	var repo identity.Repo
	if cfg.DatabaseDSN != "" {
		pgRepo, err := identity.NewPostgresRepo(cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to connect to identity database")
		}
		defer pgRepo.Close()
		repo = pgRepo
		logx.Info("Identity backend: postgres")
	} else {
		repo = identity.NewMemoryRepo()
		logx.Info("Identity backend: in-memory")
	}
	identities := identity.NewStore(repo)

	rooms, err := room.NewRegistry(store)
	if err != nil {
		logx.Fatal(err, "Failed to load rooms")
	}

	messages, err := msglog.NewLog(rooms, store)
	if err != nil {
		logx.Fatal(err, "Failed to load messages")
	}

	tracker := presence.NewTracker(rooms)
	rooms.Bind(tracker, messages)

	blobs, err := storage.NewBlobStore(cfg)
	if err != nil {
		logx.Fatal(err, "Failed to initialize file storage")
	}

	intake, err := files.NewIntake(rooms, messages, blobs, store)
	if err != nil {
		logx.Fatal(err, "Failed to load file records")
	}

	if err := rooms.EnsureDefaultRoom(); err != nil {
		logx.Fatal(err, "Failed to create default room")
	}

	// Evicted sessions leave the room exactly like an explicit leave,
	// departure notice included.
	tracker.OnEvict(func(session presence.Session) {
		if _, appendErr := messages.Append(session.RoomID, "System", session.Username+" left the room", msglog.TypeNotification, nil); appendErr != nil {
			logx.Warn("Failed to post eviction notice.", "room_id", session.RoomID, "username", session.Username)
		}
	})
	tracker.StartSweeper()

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Config:     cfg,
		Rooms:      rooms,
		Presence:   tracker,
		Messages:   messages,
		Files:      intake,
		Identities: identities,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		// WriteTimeout stays unset: the SSE event stream holds its response
		// open indefinitely.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("coLAN Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	tracker.Shutdown()

	logx.Info("Server gracefully stopped.")
}
