package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-api-profile/internal/config"
	"github.com/go-api-profile/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-api-profile/internal/infrastructure/jwt"
	otelinfra "github.com/go-api-profile/internal/infrastructure/otel"
	"github.com/go-api-profile/internal/infrastructure/postgres"
	"github.com/go-api-profile/internal/infrastructure/smtp"
	"github.com/go-api-profile/internal/infrastructure/sns"
	"github.com/go-api-profile/internal/pkg/password"
	transporthttp "github.com/go-api-profile/internal/transport/http"
	appmiddleware "github.com/go-api-profile/internal/transport/http/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

const serviceName = "profile-api"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if cfg.IsDevelopment() {
		logger.Warn("APP_ENV=development: OTPs are returned in responses when email fails and 500s carry internal errors")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelinfra.Setup(ctx, cfg, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", "err", err)
		}
	}()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	var otps transporthttp.OTPRepository
	switch cfg.OTPStore {
	case config.OTPStoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		if err := dynamo.Bootstrap(ctx, client, cfg.DynamoOTPTable); err != nil {
			return err
		}
		otps = dynamo.NewOTPRepo(client, cfg.DynamoOTPTable, cfg.OTPTTL)
	default:
		otps = postgres.NewOTPRepo(db, cfg.OTPTTL)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return err
	}

	var smsSender transporthttp.SMSSender
	if cfg.OTPSMSEnabled {
		sender, err := sns.NewSender(ctx, cfg)
		if err != nil {
			logger.Warn("SNS sender not available, OTPs go out by email only", "err", err)
		} else {
			smsSender = sender
		}
	}

	limiter := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer limiter.Stop()
	if err := limiter.TrustProxies(cfg.TrustedProxies); err != nil {
		return err
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		UserRepo:    postgres.NewUserRepo(db),
		OTPRepo:     otps,
		Hasher:      password.NewHasher(cfg.BcryptCost),
		JWTProvider: jwtProvider,
		Mailer:      smtp.NewMailer(cfg),
		SMSSender:   smsSender,
		DB:          db,
		Logger:      logger,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "otp_store", cfg.OTPStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
