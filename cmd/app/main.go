// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docstudio/internal/config"
	"docstudio/internal/domain/ports/adapter"
	aigen "docstudio/internal/infra/ai"
	pg "docstudio/internal/infra/db/postgres"
	"docstudio/internal/infra/email"
	httpapi "docstudio/internal/infra/http"
	"docstudio/internal/infra/logging"
	"docstudio/internal/infra/metrics"
	"docstudio/internal/infra/payment"
	red "docstudio/internal/infra/redis"
	"docstudio/internal/infra/sched"
	"docstudio/internal/infra/storage"
	"docstudio/internal/infra/worker"
	"docstudio/internal/render"
	"docstudio/internal/usecase"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop providers allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	subRepo := pg.NewSubscriptionRepoCacheDecorator(pg.NewSubscriptionRepo(pool), redisClient, cfg.Redis.TTL)
	docRepo := pg.NewDocumentRepo(pool)
	checkoutRepo := pg.NewCheckoutRepo(pool)
	eventRepo := pg.NewProcessedEventRepo(pool)
	artifactRepo := pg.NewArtifactRepo(pool)

	// ---- Generation providers (OpenAI -> Gemini, noop in dev) ----
	prompts, err := aigen.NewPromptBuilder(cfg.AI.MaxPromptTokens)
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt builder")
	}
	var chain []adapter.GenerationService
	if cfg.AI.OpenAIKey != "" {
		g, err := aigen.NewOpenAIGenerator(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, prompts)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai generator")
		}
		chain = append(chain, g)
	}
	if cfg.AI.GeminiKey != "" {
		g, err := aigen.NewGeminiGenerator(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, "", prompts)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini generator")
		}
		chain = append(chain, g)
	}
	if len(chain) == 0 {
		if !cfg.Runtime.Dev {
			logger.Fatal().Msg("no generation provider configured: set ai.openai_key or ai.gemini_key")
		}
		logger.Warn().Msg("no generation provider configured, using noop generator")
		chain = append(chain, aigen.NewNoopGenerator())
	}
	generator := aigen.NewFallbackGenerator(logger, chain...)

	// ---- Payment ----
	processor := payment.NewHTTPProcessor(cfg.Payment.Endpoint, cfg.Payment.APIKey)
	verifier := payment.NewHMACVerifier(cfg.Payment.WebhookSecret)

	// ---- Storage / email ----
	store, err := storage.NewS3Storage(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("object storage")
	}
	var mailer adapter.Mailer
	if cfg.Email.Region != "" && cfg.Email.From != "" {
		mailer, err = email.NewSESMailer(ctx, &cfg.Email)
		if err != nil {
			logger.Fatal().Err(err).Msg("ses mailer")
		}
	} else {
		mailer = email.NewNoopMailer(logger)
	}

	// ---- Use cases ----
	ledger := usecase.NewQuotaLedger()
	checkoutUC := usecase.NewCheckoutUseCase(checkoutRepo, subRepo, processor, locker, logger)
	reconciler := usecase.NewReconcilerUseCase(txm, subRepo, checkoutRepo, eventRepo, locker, logger)
	documentUC := usecase.NewDocumentUseCase(docRepo, subRepo, ledger, generator, rateLimiter, logger)
	artifactUC := usecase.NewArtifactUseCase(docRepo, subRepo, artifactRepo, ledger, render.NewPDFRenderer(), store, logger)

	// ---- Background workers ----
	pool2 := worker.NewPool(4, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	sweeper := sched.NewCheckoutSweeper(checkoutRepo, cfg.Sweeper.Interval, cfg.Sweeper.StaleAfter, logger)
	go sweeper.Start(ctx)

	// ---- HTTP ----
	downloads := httpapi.NewDownloadTokenManager(cfg.Security.DownloadSecret, cfg.Security.DownloadTTL)
	srv := httpapi.NewServer(cfg, checkoutUC, documentUC, artifactUC, reconciler, verifier, downloads, mailer, pool2, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
