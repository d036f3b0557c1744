package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sparklesav/sparkle-clean/internal/api/router"
	appconfig "github.com/sparklesav/sparkle-clean/internal/config"
	"github.com/sparklesav/sparkle-clean/internal/intake"
	"github.com/sparklesav/sparkle-clean/internal/notify"
	"github.com/sparklesav/sparkle-clean/internal/observability/metrics"
	"github.com/sparklesav/sparkle-clean/internal/ratelimit"
	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sparkle-clean API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"rate_limit_store", cfg.RateLimitStore,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiterCfg := ratelimit.Config{
		Window:      cfg.RateLimitWindow,
		MinInterval: cfg.MinSubmitGap,
		MaxAttempts: cfg.MaxAttempts,
	}

	var limiter ratelimit.Store
	switch cfg.RateLimitStore {
	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		limiter = ratelimit.NewRedisStore(client, limiterCfg)
	default:
		store := ratelimit.NewMemoryStore(limiterCfg)
		store.StartSweeper(ctx)
		limiter = store
	}

	// Email stays a logged placeholder unless SendGrid is configured.
	var emailSender notify.EmailSender = notify.NewLogEmailSender(logger)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	}
	smsSender := notify.NewLogSMSSender(logger)

	notifier := notify.NewService(emailSender, smsSender, cfg.NotifyEmails, cfg.NotifySMSNumbers, logger)
	intakeMetrics := metrics.NewIntakeMetrics(nil)
	intakeHandler := intake.NewHandler(limiter, notifier, intakeMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		Intake:         intakeHandler,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
