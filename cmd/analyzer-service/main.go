package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/cache"
	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/service"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.AdjustRelativePaths(exPath)
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded config")

	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	strategy, err := matcher.StrategyFromName(cfg.GetString(config.ConfigStrategy))
	if err != nil {
		log.Fatal().Err(err).Msg("bad-strategy")
	}
	an, err := analyzer.New(analyzer.Options{
		Strategy: strategy,
		Locale:   cfg.GetString(config.ConfigLocale),
		Threads:  cfg.GetInt(config.ConfigThreads),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("bad-analyzer-options")
	}

	cache.CreateGlobalLibraryCache()
	lib, fp, err := cache.Load(cfg, cfg.GetString(config.ConfigTemplatePath), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("could-not-load-library")
	}
	for _, w := range lib.Validate() {
		log.Warn().Str("warning", w.String()).Msg("library-warning")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	var rc service.ResponseCache
	if url := cfg.GetString(config.ConfigRedisURL); url != "" {
		redisCache, err := service.NewRedisCache(url, cfg.GetDuration(config.ConfigCacheTTL))
		if err != nil {
			log.Fatal().Err(err).Msg("bad-redis-url")
		}
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis-unavailable-continuing")
		}
		rc = redisCache
	}

	if addr := cfg.GetString(config.ConfigMetricsAddr); addr != "" {
		srv := service.ServeMetrics(addr)
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
			defer scancel()
			srv.Shutdown(sctx)
		}()
	}

	nc, err := service.Connect(ctx, cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		log.Fatal().Err(err).Msg("nats-connect-failed")
	}
	defer nc.Close()

	svc := service.New(cfg, an, lib, fp, rc)
	if err := svc.Serve(ctx, nc, cfg.GetString(config.ConfigNatsSubject)); err != nil {
		log.Err(err).Msg("serve-failed")
	}
	log.Info().Msg("server gracefully shutting down")
}
