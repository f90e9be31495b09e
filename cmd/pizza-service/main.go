// cmd/pizza-service/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pizza-service/internal/auth"
	"pizza-service/internal/common/config"
	"pizza-service/internal/common/database"
	"pizza-service/internal/common/logger"
	"pizza-service/internal/franchise"
	"pizza-service/internal/identity"
	"pizza-service/internal/menu"
	"pizza-service/internal/order"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("delay", delay))
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting pizza service...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Reopen at the configured level/format now that config is available.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if err := database.InitSchema(ctx, pg.GetDB()); err != nil {
		zapLog.Fatal("schema bootstrap failed", zap.Error(err))
	}
	zapLog.Info("Schema bootstrap complete")

	// --- Init Redis with retry (optional menu cache) ---
	var menuCache *redis.Client
	if cfg.Database.Redis.Enabled {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			// Test the connection with context
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		menuCache = rc.GetClient()
		zapLog.Info("Redis connected successfully")
	}

	// --- Wire stores ---
	db := pg.GetDB()

	identityStore := identity.NewStore(db, log)
	sessions := auth.NewSessionStore(db, log)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret)
	catalog := menu.NewCatalog(db, menuCache, log)
	registry := franchise.NewRegistry(db, log)
	factory := order.NewFactoryClient(cfg.Factory, log)
	ledger := order.NewLedger(db, factory, cfg.Pagination.OrdersPerPage, log)

	// The HTTP routing layer is deployed separately and consumes these
	// stores; this binary owns config, schema and connection lifecycle.
	_ = identityStore
	_ = sessions
	_ = tokens
	_ = catalog
	_ = registry
	_ = ledger

	zapLog.Info("All stores initialized")

	// --- Health/Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "healthy"
			code := http.StatusOK
			if err := pg.Ping(r.Context()); err != nil {
				status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received")
	zapLog.Info("Pizza service stopped gracefully")
}
