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

	"github.com/kailas-cloud/envdex/internal/config"
	"github.com/kailas-cloud/envdex/internal/db"
	dbRedis "github.com/kailas-cloud/envdex/internal/db/redis"
	"github.com/kailas-cloud/envdex/internal/domain"
	logpkg "github.com/kailas-cloud/envdex/internal/logger"
	"github.com/kailas-cloud/envdex/internal/metrics"
	"github.com/kailas-cloud/envdex/internal/repository/embcache"
	lexicalrepo "github.com/kailas-cloud/envdex/internal/repository/lexical"
	projectrepo "github.com/kailas-cloud/envdex/internal/repository/project"
	recordrepo "github.com/kailas-cloud/envdex/internal/repository/record"
	statusrepo "github.com/kailas-cloud/envdex/internal/repository/status"
	vectorrepo "github.com/kailas-cloud/envdex/internal/repository/vector"
	chiTransport "github.com/kailas-cloud/envdex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/envdex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/envdex/internal/usecase/health"
	projectuc "github.com/kailas-cloud/envdex/internal/usecase/project"
	registryuc "github.com/kailas-cloud/envdex/internal/usecase/registry"
	searchuc "github.com/kailas-cloud/envdex/internal/usecase/search"
	"github.com/kailas-cloud/envdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting envdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create record store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the store to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Record store not ready", zap.Error(err))
	}
	logger.Info("Connected to record store")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := buildEmbedder(&cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Create repositories
	recordRepo := recordrepo.New(store)
	vectorRepo := vectorrepo.New(store)
	lexicalRepo := lexicalrepo.New(store)
	statusRepo := statusrepo.New(store)
	projectRepo := projectrepo.New(store)

	// Ensure shared FT indexes exist before taking traffic.
	if err := vectorRepo.EnsureIndex(ctx, cfg.Embedding.Dimensions, cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}
	if err := lexicalRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure lexical index", zap.Error(err))
	}
	logger.Info("FT indexes ready")

	// Create use case services
	registrySvc := registryuc.New(recordRepo, vectorRepo, statusRepo, embedder)
	searchSvc := searchuc.New(recordRepo, vectorRepo, lexicalRepo, embedder)
	projectSvc := projectuc.New(projectRepo, recordRepo)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(
		registrySvc, searchSvc, projectSvc, healthSvc,
		cfg.Search.MaxReindexRetries, logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
func buildEmbedder(cfg *config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		User:       cfg.User,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	if !cfg.CacheOn {
		return base
	}
	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
}
