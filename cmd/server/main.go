package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arludent/clinic-ai/internal/agent"
	"github.com/arludent/clinic-ai/internal/analysis"
	"github.com/arludent/clinic-ai/internal/api"
	"github.com/arludent/clinic-ai/internal/backend"
	"github.com/arludent/clinic-ai/internal/llm"
	"github.com/arludent/clinic-ai/internal/session"
	"github.com/arludent/clinic-ai/internal/tools"
	"github.com/arludent/clinic-ai/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Backend gateway shared by all tools and health checks
	backendClient := backend.NewClient(
		cfg.Backend.URL,
		cfg.Backend.InternalAPIKey,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
		logger,
	)

	// Tool catalog
	registry := tools.NewRegistry(backendClient, logger)
	logger.Info("Tool catalog initialized", zap.Int("tools", len(registry.All())))

	// LLM client shared by the agent and the analysis pipeline
	llmClient := llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)

	// Session store
	sessions := session.NewStore(cfg.Agent.HistoryLimit, logger)

	// Agent orchestrator
	ag := agent.New(llmClient, sessions, registry, agent.Options{
		Model:         cfg.OpenAI.Model,
		Temperature:   cfg.OpenAI.Temperature,
		MaxTokens:     cfg.OpenAI.MaxTokens,
		MaxIterations: cfg.Agent.MaxIterations,
		Timeout:       time.Duration(cfg.Agent.TimeoutSeconds) * time.Second,
	}, logger)

	// Follow-up analysis pipeline with its webhook notifier
	notifier := analysis.NewNotifier(
		cfg.Webhook.URL,
		cfg.Webhook.InternalKey,
		time.Duration(cfg.Webhook.TimeoutSeconds)*time.Second,
		logger,
	)
	analyzer := analysis.NewAnalyzer(llmClient, notifier, analysis.Options{
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.Analysis.Temperature,
		MaxTokens:   cfg.Analysis.MaxTokens,
	}, logger)

	handler := api.NewHandler(ag, sessions, analyzer, backendClient, registry,
		cfg.OpenAI.Model, cfg.Server.Environment, logger)
	router := api.NewRouter(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // agent turns can take several LLM rounds
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
