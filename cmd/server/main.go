package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagemark-io/pagemark/internal/api"
	"github.com/pagemark-io/pagemark/internal/config"
	"github.com/pagemark-io/pagemark/internal/imagestore"
	"github.com/pagemark-io/pagemark/internal/notion"
	"github.com/pagemark-io/pagemark/internal/pipeline"
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

	// Initialize clients.
	nc := notion.NewClient(cfg.NotionBaseURL, cfg.NotionAPIKey, cfg.NotionVersion)
	uploader, err := imagestore.New(imagestore.Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		Bucket:          cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicURL,
		MaxConcurrent:   cfg.MaxConcurrentUploads,
	}, log)
	if err != nil {
		log.Error("image store init failed", "error", err)
		os.Exit(1)
	}
	if uploader == nil {
		log.Info("image uploads disabled, R2 not configured")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, nc, uploader, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, nc, log, cfg)

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

		// Stop the listener before the pipeline so no submission races the
		// closing queue.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer drainCancel()
		if err := orch.Shutdown(drainCtx); err != nil {
			log.Warn("pipeline drain incomplete", "error", err)
		}

		nc.Close()
	}()

	log.Info("starting pagemark", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
