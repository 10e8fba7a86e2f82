// Package service answers hand analysis requests over NATS. A request names
// a hand; the reply carries the ranked template summaries for the library
// the service was started with.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/cache"
	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

var (
	errEmptyHand   = errors.New("hand has no tiles")
	errHandTooLong = errors.New("hand has too many tiles")
)

// maxHandTiles bounds request hands; nothing in a library needs more.
const maxHandTiles = 64

type Service struct {
	config      *config.Config
	analyzer    *analyzer.Analyzer
	lib         *template.Library
	fingerprint uint64
	cache       ResponseCache
	defaultTop  int
}

// New creates a service for lib. rc may be nil, in which case every request
// is analyzed.
func New(cfg *config.Config, a *analyzer.Analyzer, lib *template.Library,
	fingerprint uint64, rc ResponseCache) *Service {

	return &Service{
		config:      cfg,
		analyzer:    a,
		lib:         lib,
		fingerprint: fingerprint,
		cache:       rc,
		defaultTop:  cfg.GetInt(config.ConfigTop),
	}
}

func errorResponse(requestID, message string, err error) *AnalyzeResponse {
	m := message
	if err != nil {
		m = fmt.Sprintf("%s: %s", m, err.Error())
	}
	return &AnalyzeResponse{RequestID: requestID, Error: m}
}

// Handle decodes one request and returns the encoded reply. It never fails;
// problems are reported in the reply's error field.
func (s *Service) Handle(ctx context.Context, data []byte) []byte {
	var resp *AnalyzeResponse
	var req AnalyzeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		RequestsTotal.WithLabelValues(outcomeBadInput).Inc()
		resp = errorResponse("", "could not parse request", err)
	} else {
		resp = s.Analyze(ctx, req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		log.Err(err).Str("requestId", resp.RequestID).Msg("marshal-response-failed")
		out, _ = json.Marshal(errorResponse(resp.RequestID, "could not encode response", err))
	}
	return out
}

// Analyze answers a decoded request. A missing request ID is filled in.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) *AnalyzeResponse {
	start := time.Now()
	resp := s.analyze(ctx, req)
	switch {
	case resp.Error != "":
		RequestsTotal.WithLabelValues(outcomeBadInput).Inc()
	case resp.Cached:
		RequestsTotal.WithLabelValues(outcomeCached).Inc()
	default:
		RequestsTotal.WithLabelValues(outcomeOK).Inc()
	}
	RequestDuration.WithLabelValues(strconv.FormatBool(resp.Cached)).Observe(time.Since(start).Seconds())
	return resp
}

func (s *Service) analyze(ctx context.Context, req AnalyzeRequest) *AnalyzeResponse {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	switch {
	case len(req.Hand) == 0:
		return errorResponse(req.RequestID, "bad hand", errEmptyHand)
	case len(req.Hand) > maxHandTiles:
		return errorResponse(req.RequestID, "bad hand", errHandTooLong)
	}
	top := req.Top
	if top <= 0 {
		top = s.defaultTop
	}
	hand := tile.HandFromCodes(req.Hand)
	logger := log.With().Str("requestId", req.RequestID).Logger()

	key := CacheKey(cache.FingerprintString(s.fingerprint), s.analyzer.StrategyName(),
		s.analyzer.Locale().String(), top, hand.Codes())

	if s.cache != nil {
		bts, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			CacheErrors.Inc()
			logger.Warn().Err(err).Msg("cache-get-failed")
		} else if ok {
			var results []analyzer.TemplateMatchSummary
			if err := json.Unmarshal(bts, &results); err == nil {
				logger.Debug().Str("key", key).Msg("cache-hit")
				return &AnalyzeResponse{RequestID: req.RequestID, Results: results, Cached: true}
			}
			logger.Warn().Str("key", key).Msg("cache-entry-unreadable")
		}
	}

	results := analyzer.Top(s.analyzer.Analyze(hand, s.lib.Templates), top)
	if len(results) > 0 {
		BestMatchPercentage.Observe(float64(results[0].BestMatch.MatchPercentage))
	}
	logger.Info().Int("tiles", len(hand)).Int("results", len(results)).Msg("analyzed-hand")

	if s.cache != nil {
		bts, err := json.Marshal(results)
		if err == nil {
			err = s.cache.Set(ctx, key, bts)
		}
		if err != nil {
			CacheErrors.Inc()
			logger.Warn().Err(err).Msg("cache-set-failed")
		}
	}
	return &AnalyzeResponse{RequestID: req.RequestID, Results: results}
}

// Connect dials the NATS server at url, retrying with backoff until ctx is
// done or the attempts run out.
func Connect(ctx context.Context, url string) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url, nats.Name("handmatch-analyzer"))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(8),
		retry.Delay(250*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			d := retry.BackOffDelay(n, err, config)
			log.Warn().Err(err).Uint("attempt", n+1).Dur("wait", d).Msg("nats-connect-retry")
			return d
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	return nc, nil
}

// Serve subscribes to subject on nc and answers requests until ctx is done.
// The subscription is drained before returning.
func (s *Service) Serve(ctx context.Context, nc *nats.Conn, subject string) error {
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Debug().Msgf("RECV: %d bytes", len(m.Data))
		if err := m.Respond(s.Handle(ctx, m.Data)); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("subject", subject).Int("templates", len(s.lib.Templates)).
		Str("fingerprint", cache.FingerprintString(s.fingerprint)).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("draining-subscription")
	return sub.Drain()
}
