package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/talvik/deskchat/internal/ai"
	"github.com/talvik/deskchat/internal/chat"
	"github.com/talvik/deskchat/internal/config"
	"github.com/talvik/deskchat/internal/httpapi"
	"github.com/talvik/deskchat/internal/httpapi/handlers"
	"github.com/talvik/deskchat/internal/render"
)

func buildRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("gemini", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.GeminiModel
		}
		return ai.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, m, cfg.SystemInstruction), nil
	})

	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})

	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	return reg
}

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := config.SetupLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("setup logger: %v", err)
	}

	if cfg.AIProvider == "gemini" && strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		logger.Error("GEMINI_API_KEY is not set")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("create data directory", "error", err)
		os.Exit(1)
	}

	store, err := chat.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open chat store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	logger.Info("chat store ready", "path", cfg.DBPath)

	reg := buildRegistry(cfg)
	provider, err := reg.Get(context.Background(), cfg.AIProvider, "")
	if err != nil {
		logger.Error("configure ai provider", "provider", cfg.AIProvider, "error", err)
		os.Exit(1)
	}

	svc := chat.NewService(store, provider, logger)
	h := handlers.NewHandler(store, svc, render.New(), logger)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewRouter(h),
	}

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "provider", cfg.AIProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("close chat store", "error", err)
	}
	logger.Info("bye")
}
