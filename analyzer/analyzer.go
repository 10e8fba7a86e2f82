// Package analyzer scores a hand against every template of a library and
// returns one summary per template that the hand matches at all, best
// templates first.
package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

// Options configure an Analyzer. The zero value matches greedily and
// compares names with the root collation.
type Options struct {
	Strategy matcher.Strategy
	// Locale is a BCP 47 tag used to compare variant and template names.
	Locale string
	// Threads bounds AnalyzeBatch. 0 means one per CPU.
	Threads int
}

// Analyzer runs a matcher over whole template libraries. It keeps no state
// between calls and is safe for concurrent use.
type Analyzer struct {
	matcher *matcher.Matcher
	locale  language.Tag
	threads int
}

// New creates an analyzer.
func New(opts Options) (*Analyzer, error) {
	tag := language.Und
	if opts.Locale != "" {
		var err error
		tag, err = language.Parse(opts.Locale)
		if err != nil {
			return nil, fmt.Errorf("bad locale %q: %w", opts.Locale, err)
		}
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &Analyzer{
		matcher: matcher.New(opts.Strategy),
		locale:  tag,
		threads: threads,
	}, nil
}

// Default returns an analyzer with default options.
func Default() *Analyzer {
	a, _ := New(Options{})
	return a
}

// Analyze scores the hand against the default analyzer.
func Analyze(hand tile.Hand, templates []template.HandTemplate) []TemplateMatchSummary {
	return Default().Analyze(hand, templates)
}

// StrategyName returns the name of the matching strategy in use.
func (a *Analyzer) StrategyName() string {
	return a.matcher.Strategy().Name()
}

// Locale returns the locale used for name comparisons.
func (a *Analyzer) Locale() language.Tag {
	return a.locale
}

// Analyze matches the hand against every variant of every template. A
// template contributes a summary only if at least one of its variants
// matches at least one tile. Summaries are sorted by best matched count,
// highest first, then by template name.
func (a *Analyzer) Analyze(hand tile.Hand, templates []template.HandTemplate) []TemplateMatchSummary {
	if len(hand) == 0 || len(templates) == 0 {
		return []TemplateMatchSummary{}
	}
	ranker := NewRanker(a.locale)
	summaries := []TemplateMatchSummary{}

	for _, ht := range templates {
		if len(ht.Variations) == 0 {
			log.Debug().Str("template", ht.ID).Msg("skipping-template-no-variations")
			continue
		}
		summary, ok := a.analyzeTemplate(hand, ht, ranker)
		if !ok {
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		ci, cj := summaries[i].BestMatch.MatchedCount, summaries[j].BestMatch.MatchedCount
		if ci != cj {
			return ci > cj
		}
		return ranker.compare(summaries[i].TemplateName, summaries[j].TemplateName) < 0
	})
	return summaries
}

func (a *Analyzer) analyzeTemplate(hand tile.Hand, ht template.HandTemplate,
	ranker *Ranker) (TemplateMatchSummary, bool) {

	maxCount := 0
	var tied []matcher.MatchResult
	for i, v := range ht.Variations {
		res := a.matcher.Match(hand, v, ht.ID, ht.Name)
		res.OriginalVariationIndex = i
		switch {
		case res.MatchedCount > maxCount:
			maxCount = res.MatchedCount
			tied = []matcher.MatchResult{res}
		case res.MatchedCount == maxCount && maxCount > 0:
			tied = append(tied, res)
		}
	}
	if maxCount == 0 {
		return TemplateMatchSummary{}, false
	}

	image := ht.Image
	if image == "" {
		image = ht.Name
	}
	return TemplateMatchSummary{
		TemplateID:               ht.ID,
		TemplateName:             ht.Name,
		Category:                 ht.Category,
		Image:                    image,
		BestMatch:                ranker.Best(tied, hand),
		VariantCount:             len(ht.Variations),
		MaxMatchedVariations:     len(tied),
		MaxMatchedVariationsList: tied,
	}, true
}

// AnalyzeBatch analyzes many hands at once, at most Threads at a time. The
// returned slice lines up with hands. It stops early and returns the
// context's error if ctx is cancelled.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, hands []tile.Hand,
	templates []template.HandTemplate) ([][]TemplateMatchSummary, error) {

	out := make([][]TemplateMatchSummary, len(hands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.threads)

	for i, h := range hands {
		if gctx.Err() != nil {
			break
		}
		i, h := i, h
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.Analyze(h, templates)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Debug().Err(err).Int("hands", len(hands)).Msg("batch-interrupted")
		return nil, err
	}
	return out, nil
}
