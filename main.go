package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/account-service/internal/config"
	"github.com/msomdec/account-service/internal/domain"
	"github.com/msomdec/account-service/internal/handler"
	"github.com/msomdec/account-service/internal/repository/jsonfile"
	"github.com/msomdec/account-service/internal/repository/sqlite"
	"github.com/msomdec/account-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	store, err := jsonfile.Open(cfg.DataPath)
	if err != nil {
		slog.Error("failed to open record store", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}
	slog.Info("record store loaded", "path", store.Path())

	var revoked domain.RevocationList
	switch cfg.RevocationStore {
	case config.RevocationStoreMemory:
		revoked = service.NewMemoryRevocationList()
		slog.Warn("revocation list is in memory; restarts forget revoked tokens")
	default:
		db, err := sqlite.New(cfg.RevocationDBPath)
		if err != nil {
			slog.Error("failed to open revocation database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(context.Background()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations applied")
		revoked = db.Revocations()
	}

	users, err := service.NewUserService(jsonfile.NewUserRepository(store), cfg.BcryptCost)
	if err != nil {
		slog.Error("failed to create user service", "error", err)
		os.Exit(1)
	}
	authService := service.NewAuthService(users, service.NewTokenIssuer(cfg.SecretKey, cfg.TokenTTL), revoked)
	loginLimiter := service.NewTokenBucket(cfg.LoginRate, cfg.LoginBurst)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go service.NewRevocationPruner(revoked, cfg.RevocationPruneInterval).Run(ctx)
	go loginLimiter.Cleanup(ctx, 5*time.Minute)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(authService, users, handler.RouterConfig{
			CORSOrigins:  cfg.CORSOrigins,
			LoginLimiter: loginLimiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
