// analyze scores many hands against a template library and prints
// aggregate statistics. Hands are read one per line from the file named by
// the first argument, or from stdin if there is none. `analyze deal N`
// deals N random hands instead.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/cache"
	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/deck"
	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/stats"
	"github.com/domino14/handmatch/tile"
)

const (
	histogramBins  = 10
	histogramWidth = 50
)

// readHands reads one hand per line. Blank lines and lines starting with #
// are skipped.
func readHands(r io.Reader) ([]tile.Hand, error) {
	var hands []tile.Hand
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hands = append(hands, tile.HandFromString(line))
	}
	return hands, scanner.Err()
}

func dealHands(d *deck.Deck, n int) ([]tile.Hand, error) {
	hands := make([]tile.Hand, 0, n)
	for i := 0; i < n; i++ {
		h, err := d.DealHand()
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
		d.Discard(h...)
	}
	return hands, nil
}

func getHands(args []string, stdin io.Reader) ([]tile.Hand, error) {
	switch {
	case len(args) == 0:
		return readHands(stdin)
	case args[0] == "deal":
		if len(args) < 2 {
			return nil, fmt.Errorf("usage: analyze deal <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, err
		}
		return dealHands(deck.New(nil), n)
	default:
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readHands(f)
	}
}

func run(ctx context.Context, cfg *config.Config, stdin io.Reader, w io.Writer) error {
	strategy, err := matcher.StrategyFromName(cfg.GetString(config.ConfigStrategy))
	if err != nil {
		return err
	}
	an, err := analyzer.New(analyzer.Options{
		Strategy: strategy,
		Locale:   cfg.GetString(config.ConfigLocale),
		Threads:  cfg.GetInt(config.ConfigThreads),
	})
	if err != nil {
		return err
	}
	lib, fp, err := cache.Load(cfg, cfg.GetString(config.ConfigTemplatePath), nil)
	if err != nil {
		return err
	}
	log.Debug().Str("fingerprint", cache.FingerprintString(fp)).Int("templates", len(lib.Templates)).
		Msg("library-loaded")

	hands, err := getHands(cfg.Args(), stdin)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		return fmt.Errorf("no hands to analyze")
	}

	all, err := an.AnalyzeBatch(ctx, hands, lib.Templates)
	if err != nil {
		return err
	}
	batch := analyzer.NewBatchAnalysisResult()
	for i, sums := range all {
		batch.AddHandResult(&analyzer.BatchHandResult{Hand: hands[i], Summaries: sums})
	}
	batch.CalculateAverages()

	top := cfg.GetInt(config.ConfigTop)
	for i, r := range batch.Hands {
		best := "-"
		if len(r.Summaries) > 0 {
			best = r.Summaries[0].String()
		}
		fmt.Fprintf(w, "%4d  %s\n      %s\n", i+1, r.Hand, best)
	}

	fmt.Fprintf(w, "\n%d hands, %d matched something, %d matched nothing\n\n",
		batch.TotalHands, batch.MatchedHands, batch.EmptyHands)
	fmt.Fprintf(w, "%-30s %6s %7s %7s\n", "Template", "Best", "Listed", "Avg%")
	for i, ts := range batch.SortedTemplateStats() {
		if i >= top {
			break
		}
		fmt.Fprintf(w, "%-30s %6d %7d %7.2f\n", ts.TemplateName, ts.TimesBest, ts.TimesListed, ts.AvgPercentage)
	}

	report := stats.Summarize(batch.BestPercentages())
	fmt.Fprintf(w, "\nbest match %%: %s\n\n", report)
	return report.Histogram(w, histogramBins, histogramWidth)
}

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.AdjustRelativePaths(exPath)
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache.CreateGlobalLibraryCache()
	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("analyze-failed")
	}
}
