// faqdesk answers customer questions from a local FAQ knowledge base using a
// locally hosted language model, and records every exchange.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/adapters/history"
	"github.com/helpwise/faqdesk-go/internal/adapters/kbwatch"
	"github.com/helpwise/faqdesk-go/internal/adapters/llm"
	"github.com/helpwise/faqdesk-go/internal/config"
	"github.com/helpwise/faqdesk-go/internal/domain/usecases"
	httpserver "github.com/helpwise/faqdesk-go/internal/infrastructure/http"
	"github.com/helpwise/faqdesk-go/internal/knowledge"
	"github.com/helpwise/faqdesk-go/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := history.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	// An unparsable knowledge base at startup is fatal: no corpus, no service.
	snapshot, err := knowledge.Load(cfg.Knowledge.Path, logger)
	if err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}
	invoker := llm.NewOllamaAdapter(llm.Options{
		BaseURL:        cfg.Ollama.Host,
		Model:          cfg.Ollama.Model,
		Timeout:        cfg.Ollama.Timeout(),
		MaxAttempts:    cfg.Ollama.MaxAttempts,
		RetryPause:     cfg.Ollama.RetryPause(),
		OverallTimeout: cfg.Ollama.OverallTimeout(),
		Temperature:    cfg.Ollama.Temperature,
		MaxTokens:      cfg.Ollama.MaxTokens,
	}, logger)

	checkCtx, cancelCheck := context.WithTimeout(context.Background(), 5*time.Second)
	if !invoker.CheckConnection(checkCtx) {
		logger.Warn("ollama backend not reachable at startup",
			zap.String("host", cfg.Ollama.Host))
	} else if !invoker.CheckModelAvailable(checkCtx) {
		logger.Warn("configured model not found in ollama",
			zap.String("model", cfg.Ollama.Model))
	}
	cancelCheck()

	answerUC := usecases.NewAnswerUseCase(snapshot, invoker, cfg.Retrieval.TopK, cfg.Retrieval.MaxContext, logger)
	historyUC := usecases.NewHistoryUseCase(store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Knowledge.WatchEnabled() {
		watcher, err := kbwatch.New(cfg.Knowledge.Path, snapshot, logger)
		if err != nil {
			return fmt.Errorf("creating knowledge base watcher: %w", err)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("knowledge base watcher stopped", zap.Error(err))
			}
		}()
	}

	server := httpserver.NewServer(httpserver.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout(),
		WriteTimeout:    cfg.Server.WriteTimeout(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout(),
	}, answerUC, historyUC, snapshot, invoker.Model(), logger)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
