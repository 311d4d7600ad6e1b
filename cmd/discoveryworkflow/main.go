package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	restate "github.com/restatedev/sdk-go"
	"github.com/restatedev/sdk-go/server"
	"github.com/surrealdb/surrealdb.go"
	"go.uber.org/zap"

	"github.com/spectra-red/cpe-discovery/internal/cachestore"
	"github.com/spectra-red/cpe-discovery/internal/cpe"
	"github.com/spectra-red/cpe-discovery/internal/workflows"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	port := getEnv("PORT", "9080")
	nvdAPIKey := getEnv("NVD_API_KEY", "")
	if nvdAPIKey == "" {
		logger.Warn("NVD_API_KEY not set, using public rate limit (5 req/30s)")
	}

	logger.Info("initializing CPE discovery workflow service",
		zap.String("port", port),
		zap.Bool("nvd_api_key_configured", nvdAPIKey != ""))

	config := cpe.DefaultConfig()
	config.NVDAPIKey = nvdAPIKey

	cacheStore, closeCache := newCacheStore(logger)
	if closeCache != nil {
		defer closeCache()
	}

	gate := cpe.NewGate(config.MinInterval, config.CacheTTL, cacheStore, logger)
	client := cpe.NewClient(http.DefaultClient, gate, nvdAPIKey, logger)

	pipeline, err := cpe.NewPipeline(client, config, logger)
	if err != nil {
		logger.Fatal("failed to initialize pipeline", zap.Error(err))
	}

	discoverBatchWorkflow := workflows.NewDiscoverBatchWorkflow(pipeline)

	restateServer := server.NewRestate().
		Bind(restate.Reflect(discoverBatchWorkflow))

	handler, err := restateServer.Handler()
	if err != nil {
		logger.Fatal("failed to create Restate handler", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("workflow service starting", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down workflow service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("workflow service stopped")
}

// newCacheStore selects the NVD response cache backend. By default it is
// the in-process cpe.MemoryStore; setting CPE_CACHE_BACKEND=surreal
// persists the cache in SurrealDB so a redeployed service keeps it warm.
func newCacheStore(logger *zap.Logger) (cpe.CacheStore, func()) {
	if getEnv("CPE_CACHE_BACKEND", "memory") != "surreal" {
		return cpe.NewMemoryStore(), nil
	}

	surrealURL := getEnv("SURREALDB_URL", "ws://localhost:8000/rpc")
	surrealUser := getEnv("SURREALDB_USER", "root")
	surrealPass := getEnv("SURREALDB_PASS", "root")
	surrealNS := getEnv("SURREALDB_NAMESPACE", "cpefind")
	surrealDB := getEnv("SURREALDB_DATABASE", "discovery")

	db, err := surrealdb.New(surrealURL)
	if err != nil {
		logger.Fatal("failed to connect to SurrealDB", zap.Error(err), zap.String("url", surrealURL))
	}

	if _, err := db.SignIn(context.Background(), surrealdb.Auth{
		Username: surrealUser,
		Password: surrealPass,
	}); err != nil {
		logger.Fatal("failed to authenticate with SurrealDB", zap.Error(err))
	}

	if err := db.Use(context.Background(), surrealNS, surrealDB); err != nil {
		logger.Fatal("failed to use namespace/database", zap.Error(err),
			zap.String("namespace", surrealNS), zap.String("database", surrealDB))
	}

	logger.Info("using SurrealDB-backed NVD cache",
		zap.String("namespace", surrealNS), zap.String("database", surrealDB))

	return cachestore.NewSurrealStore(db, logger), func() { db.Close(context.Background()) }
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
