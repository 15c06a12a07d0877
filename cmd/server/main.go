package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docrender/internal/api"
	"github.com/dgallion1/docrender/internal/config"
	"github.com/dgallion1/docrender/internal/matrix"
	"github.com/dgallion1/docrender/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the Matrix client when delivery is configured.
	var sender pipeline.Sender
	if cfg.MatrixConfigured() {
		client := matrix.NewClient(cfg.MatrixHomeserverURL, cfg.MatrixAccessToken)
		userID, err := client.WhoAmI(ctx)
		if err != nil {
			log.Error("matrix credentials check failed", "error", err)
			os.Exit(1)
		}
		log.Info("matrix delivery enabled", "user_id", userID)
		sender = client
	} else {
		log.Info("matrix delivery disabled, /api/deliver will return 503")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, sender, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docrender", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
