package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/cache"
	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/service"
)

var cfg *config.Config
var svc *service.Service
var nc *nats.Conn

// HandleRequest analyzes one hand. The library is loaded once per container,
// at cold start.
func HandleRequest(ctx context.Context, evt service.LambdaEvent) (*service.AnalyzeResponse, error) {
	resp := svc.Analyze(ctx, evt.AnalyzeRequest)
	logger := log.With().Str("requestId", resp.RequestID).Logger()
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	if evt.ReplyChannel != "" && nc != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("analysis-success-sending-via-nats")
		err = retry.Do(
			func() error {
				// Only the acknowledgement matters here.
				_, err := nc.Request(evt.ReplyChannel, data, 3*time.Second)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(5),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				logger.Err(err).Uint("n", n).
					Msg("did-not-receive-ack-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			logger.Err(err).Msg("reply-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	return resp, nil
}

func setup(c *config.Config) (*service.Service, error) {
	strategy, err := matcher.StrategyFromName(c.GetString(config.ConfigStrategy))
	if err != nil {
		return nil, err
	}
	an, err := analyzer.New(analyzer.Options{
		Strategy: strategy,
		Locale:   c.GetString(config.ConfigLocale),
		Threads:  c.GetInt(config.ConfigThreads),
	})
	if err != nil {
		return nil, err
	}
	cache.CreateGlobalLibraryCache()
	lib, fp, err := cache.Load(c, c.GetString(config.ConfigTemplatePath), nil)
	if err != nil {
		return nil, err
	}
	return service.New(c, an, lib, fp, nil), nil
}

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg = config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())
	cfg.AdjustRelativePaths(exPath)
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	svc, err = setup(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("setup-failed")
	}

	nc, err = nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		// Replies are optional; the invocation result still carries them.
		log.Warn().AnErr("natsConnectErr", err).Msg("no-reply-channel-support")
		nc = nil
	}

	lambda.Start(HandleRequest)
}
