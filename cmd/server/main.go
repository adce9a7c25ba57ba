package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/notegest/internal/api"
	"github.com/dgallion1/notegest/internal/config"
	"github.com/dgallion1/notegest/internal/enhance"
	"github.com/dgallion1/notegest/internal/llm"
	"github.com/dgallion1/notegest/internal/pipeline"
	"github.com/dgallion1/notegest/internal/reply"
	"github.com/dgallion1/notegest/internal/trello"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	format, err := reply.ParseFormat(cfg.ReplyFormat)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	client := llm.NewClient(llm.Options{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	decoder, err := reply.NewDecoder(format)
	if err != nil {
		log.Error("compile reply schema", "error", err)
		os.Exit(1)
	}
	converter, err := trello.NewConverter(cfg.TrelloTemplate)
	if err != nil {
		log.Error("load trello template", "error", err)
		os.Exit(1)
	}
	enh := enhance.New(client, decoder, enhance.Options{RewriteTags: cfg.RewriteTags}, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Config{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, enh, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, enh, client, converter, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second, // sync enhance waits on the model
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop accepting uploads before the queue closes.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()

		client.Close()
	}()

	log.Info("starting notegest",
		"port", cfg.Port,
		"model", cfg.LLM.Model,
		"reply_format", string(format),
		"rewrite_tags", cfg.RewriteTags,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
