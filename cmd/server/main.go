package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telder/paperidx/internal/api"
	"github.com/telder/paperidx/internal/chunker"
	"github.com/telder/paperidx/internal/config"
	"github.com/telder/paperidx/internal/embed"
	"github.com/telder/paperidx/internal/index"
	"github.com/telder/paperidx/internal/loader"
	"github.com/telder/paperidx/internal/pipeline"
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

	// Initialize the index writer and make sure the index exists.
	writer, err := index.NewWriter(index.Config{
		URL:       cfg.OpenSearchURL,
		Username:  cfg.OpenSearchUser,
		Password:  cfg.OpenSearchPassword,
		Index:     cfg.IndexName,
		Dimension: cfg.EmbeddingDimension,
	}, log)
	if err != nil {
		log.Error("index writer init failed", "error", err)
		os.Exit(1)
	}
	if err := writer.EnsureIndex(ctx); err != nil {
		log.Error("index setup failed", "error", err)
		os.Exit(1)
	}

	// Initialize the embedding provider and fan-out orchestrator.
	embedClient, err := embed.NewOpenAIClient(embed.OpenAIConfig{
		BaseURL:   cfg.EmbeddingBaseURL,
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.EmbeddingModel,
		Dimension: cfg.EmbeddingDimension,
		Timeout:   cfg.EmbedTimeout,
	})
	if err != nil {
		log.Error("embedding client init failed", "error", err)
		os.Exit(1)
	}
	embedOrch := embed.NewOrchestrator(embedClient, cfg.EmbedConcurrency, log)

	// Initialize document loading.
	pdfLoader, err := loader.NewPDFLoader(loader.PDFKind(cfg.PDFLoader))
	if err != nil {
		log.Error("pdf loader init failed", "error", err)
		os.Exit(1)
	}
	loaders := loader.NewRegistry(pdfLoader)

	// Initialize the pipeline.
	coord := pipeline.NewCoordinator(loaders, embedOrch, writer, chunker.Config{
		MaxChars:      cfg.MaxChunkChars,
		OverlapChars:  cfg.ChunkOverlapChars,
		MaxTableChars: cfg.MaxTableChars,
	}, log)
	orch := pipeline.NewOrchestrator(coord, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, coord, writer, embedClient, embedOrch.Stats(), log, cfg)

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

		// Drain HTTP first so no handler submits to a stopping pipeline.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()

		embedClient.Close()
	}()

	log.Info("starting paperidx", "port", cfg.Port, "index", cfg.IndexName)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
