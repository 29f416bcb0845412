package main

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"

	"os/signal"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/felipetaua/finan/internal/amqp"
	"github.com/felipetaua/finan/internal/auth"
	"github.com/felipetaua/finan/internal/cache"
	"github.com/felipetaua/finan/internal/config"
	apphttp "github.com/felipetaua/finan/internal/http"
	applog "github.com/felipetaua/finan/internal/log"
	"github.com/felipetaua/finan/internal/onboarding"
	"github.com/felipetaua/finan/internal/services"
	"github.com/felipetaua/finan/internal/store"
)

const (
	onboardingSessionTTL = 30 * time.Minute
	shutdownTimeout      = 30 * time.Second
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer st.Close()

	// The broker is optional at startup: transactions save locally
	// either way, only the XP award pipeline stays quiet.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, events disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	var google auth.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = auth.NewIDTokenVerifier(cfg.GoogleClientID)
	} else {
		logger.Info("Google sign-in disabled - no GOOGLE_CLIENT_ID provided")
	}

	finance := services.NewFinanceService(st, publisher)
	challenges := services.NewChallengeService(st)
	authSvc := auth.NewService(st, tokens, google, cfg.OTPTTL)
	registry := onboarding.NewRegistry(onboardingSessionTTL)

	cacheManager := cache.NewManager()
	finance.RegisterCaches(cacheManager)
	cacheManager.StartCleanup(cfg.CacheCleanupInterval)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(apphttp.Config{
		Port:               cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		Finance:    finance,
		Challenges: challenges,
		Auth:       authSvc,
		Tokens:     tokens,
		Onboarding: registry,
		Store:      st,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := registry.Sweep(); n > 0 {
					logger.Debug("Swept expired onboarding sessions", "count", n)
				}
			}
		}
	})

	logger.Info("Starting finan server", "port", cfg.Port)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
