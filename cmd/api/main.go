package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/appforge/discovery-ai-platform/internal/agent"
	"github.com/appforge/discovery-ai-platform/internal/api/handlers"
	"github.com/appforge/discovery-ai-platform/internal/api/router"
	appconfig "github.com/appforge/discovery-ai-platform/internal/config"
	"github.com/appforge/discovery-ai-platform/internal/engine"
	"github.com/appforge/discovery-ai-platform/internal/llm"
	"github.com/appforge/discovery-ai-platform/internal/observability/metrics"
	"github.com/appforge/discovery-ai-platform/internal/profile"
	"github.com/appforge/discovery-ai-platform/internal/session"
	"github.com/appforge/discovery-ai-platform/internal/training"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting discovery-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	store := session.NewRedisStore(redisClient, cfg.StorageTimeout)
	sessions := session.NewManager(store, cfg.SessionTTL, logger)

	llmClient, err := buildLLMClient(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	detector := profile.NewDetector(logger, profile.WithMetrics(engineMetrics))
	catalog := agent.NewCatalog()
	eng := engine.New(llmClient, sessions, catalog, logger,
		engine.WithGenerationTimeout(cfg.GenerationTimeout),
		engine.WithGenerationRetries(cfg.GenerationRetries),
		engine.WithMetrics(engineMetrics),
	)
	collector := training.NewCollector(redisClient, cfg.TrainingQueueKey, cfg.TrainingQueueCap, logger)

	routerCfg := &router.Config{
		Logger:         logger,
		Sessions:       handlers.NewSessionsHandler(sessions, eng, detector, catalog, logger),
		Profile:        handlers.NewProfileHandler(detector, cfg.MinProfileConfidence, logger),
		Corrections:    handlers.NewCorrectionsHandler(collector, logger),
		Ops:            handlers.NewOpsHandler(sessions),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildLLMClient assembles the question-generation client per the
// configured provider, with Gemini as automatic fallback when both
// providers are configured.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	var gemini llm.Client
	if cfg.GeminiAPIKey != "" {
		g, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		gemini = g
	}

	switch cfg.LLMProvider {
	case "gemini":
		if gemini == nil {
			return nil, fmt.Errorf("LLM_PROVIDER=gemini but GEMINI_API_KEY is not set")
		}
		return gemini, nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		bedrock := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		if gemini != nil {
			// Each provider gets half of the generation window.
			fb := llm.NewFallbackClient(bedrock, gemini, logger.Logger).
				WithAttemptTimeout(cfg.GenerationTimeout / 2)
			return fb, nil
		}
		return bedrock, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}
