// Package main is the entry point for the inkhub API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/security"
	"inkhub/internal/data"
	"inkhub/internal/domain/auth"
	v1 "inkhub/internal/infrastructure/http/v1"
	"inkhub/internal/store/local"
	"inkhub/internal/store/postgres"
	"inkhub/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting inkhub server")

	policy, err := security.DefaultPolicy()
	if err != nil {
		log.Fatalw("failed to compile visibility policy", "error", err)
	}

	// --- Data layer: hosted database with offline blob fallback ---
	layer, remote, err := connect(ctx, policy, log)
	if err != nil {
		log.Fatalw("failed to open data store", "error", err)
	}
	if remote != nil {
		defer remote.Close()
	}

	if err := layer.Load(ctx); err != nil {
		log.Fatalw("failed to load collections", "error", err)
	}
	log.Infow("data layer ready", "mode", string(layer.Mode()))

	// --- Auth ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	sessions := auth.NewSessionManager()
	authService := auth.NewService(layer, sessions, jwtService, auth.DefaultServiceConfig())

	// --- Reconciler ---
	// A login elsewhere rotates the session token; the reconciler notices
	// and forces this session out. A fresh local login re-arms the latch.
	reconCtx, stopRecon := context.WithCancel(ctx)
	defer stopRecon()

	reconciler := data.NewReconciler(layer, data.ReconcilerConfig{
		PollInterval:      getEnvDuration("SESSION_POLL_INTERVAL", data.DefaultPollInterval),
		Session:           sessions.Current,
		OnSessionConflict: authService.ForceLogout,
	})
	authService.OnLogin(reconciler.Rearm)

	go func() {
		if err := reconciler.Run(reconCtx); err != nil && reconCtx.Err() == nil {
			log.Errorw("reconciler stopped", "error", err)
		}
	}()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Layer:        layer,
		AuthService:  authService,
		JWTValidator: jwtService,
		Logger:       log,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopRecon()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	// Flush in-flight audit writes before the pool closes.
	layer.Audit().Wait()

	log.Info("server stopped")
}

// connect opens the hosted database when DATABASE_URL is set and reachable,
// otherwise falls back to the offline blob. Any other failure is fatal.
func connect(ctx context.Context, policy *security.Policy, log *logger.Logger) (*data.Layer, *postgres.Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	blobPath := getEnv("LOCAL_BLOB_PATH", local.DefaultPath)

	if dsn != "" {
		remote, err := postgres.New(ctx, postgres.DefaultPoolConfig(dsn))
		if err == nil {
			return data.NewRemote(remote, policy), remote, nil
		}
		if !apperror.IsRemoteUnavailable(err) {
			return nil, nil, err
		}
		log.Warnw("hosted database unreachable, falling back to offline blob",
			"error", err,
			"path", blobPath,
		)
	}

	blob, err := local.Open(blobPath)
	if err != nil {
		return nil, nil, err
	}
	return data.NewLocal(blob, policy), nil, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
