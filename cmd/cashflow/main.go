package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cashflow/internal/auth"
	"cashflow/internal/backend"
	"cashflow/internal/cache"
	"cashflow/internal/cli"
	"cashflow/internal/config"
	"cashflow/internal/core"
	apphttp "cashflow/internal/http"
	"cashflow/internal/log"
	"cashflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	caches := cache.NewManager()
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	backends, err := backend.NewFactory(logger.Logger, caches).Create(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backends", log.FieldError, err, "mail_backend", backendCfg.Mail.String())
		os.Exit(1)
	}
	defer backends.Cleanup()

	svc := apphttp.Services{
		Auth: services.NewAuthService(repo,
			auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
			backends.Revoker,
			backends.Mailer,
			cfg.OTPTTL),
		Users:      services.NewUserService(repo),
		Income:     services.NewLedgerService(repo, core.KindIncome),
		Expense:    services.NewLedgerService(repo, core.KindExpense),
		Budgets:    services.NewBudgetService(repo),
		Categories: services.NewCategoryService(repo),
		Analytics:  services.NewAnalyticsService(repo),
		Export:     services.NewExportService(repo),
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:           logger,
		CORSOrigins:      cfg.CORSOrigins,
		CookieSecure:     cfg.CookieSecure,
		RateLimitRPM:     cfg.RateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		Caches:           caches,
		Ready:            repo.Ping,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting cashflow server",
		"port", cfg.Port,
		"mail_backend", backendCfg.Mail.String(),
		"redis", cfg.RedisURL != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
