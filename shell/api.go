package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/handmatch/analyzer"
	"github.com/domino14/handmatch/cache"
	"github.com/domino14/handmatch/config"
	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	path := sc.config.GetString(config.ConfigTemplatePath)
	if len(cmd.args) > 0 {
		path = cmd.args[0]
	}
	if path == "" {
		return nil, errors.New("need a path to a template library")
	}
	lib, fp, err := cache.Load(sc.config, path, nil)
	if err != nil {
		return nil, err
	}
	sc.lib = lib
	sc.libPath = path
	sc.fingerprint = fp
	sc.lastResults = nil
	log.Debug().Str("path", path).Str("fingerprint", cache.FingerprintString(fp)).Msg("shell-loaded-library")

	out := fmt.Sprintf("loaded %d templates (%d variations) from %s",
		len(lib.Templates), lib.NumVariations(), path)
	if empty := lib.EmptyTemplates(); len(empty) > 0 {
		out += fmt.Sprintf("\n%d templates have no variations and will be skipped: %s",
			len(empty), strings.Join(empty, ", "))
	}
	return msg(out), nil
}

func (sc *ShellController) setHand(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		if sc.hand == nil {
			return nil, errNoHand
		}
		return msg(sc.handDisplay()), nil
	}
	sc.hand = tile.HandFromString(strings.Join(cmd.args, " "))
	sc.lastResults = nil
	return msg(sc.handDisplay()), nil
}

func (sc *ShellController) deal(cmd *shellcmd) (*Response, error) {
	n := template.StandardHandSize
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	if sc.hand != nil {
		sc.deck.Discard(sc.hand...)
	}
	h, err := sc.deck.Deal(n)
	if err != nil {
		log.Debug().Err(err).Msg("resetting-deck")
		sc.deck.Reset()
		if h, err = sc.deck.Deal(n); err != nil {
			return nil, err
		}
	}
	sc.hand = h
	sc.lastResults = nil
	return msg(sc.handDisplay()), nil
}

func (sc *ShellController) handDisplay() string {
	var sb strings.Builder
	for i, t := range sc.hand {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%d:%s", i, t.Code)
	}
	fmt.Fprintf(&sb, "  (%d tiles, %d jokers)", len(sc.hand), sc.hand.NumWildcards())
	return sb.String()
}

func (sc *ShellController) runAnalysis() ([]analyzer.TemplateMatchSummary, error) {
	if sc.lib == nil {
		return nil, errNoLibrary
	}
	if sc.hand == nil {
		return nil, errNoHand
	}
	sc.lastResults = sc.analyzer.Analyze(sc.hand, sc.lib.Templates)
	return sc.lastResults, nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	top, err := cmd.options.IntDefault("top", sc.config.GetInt(config.ConfigTop))
	if err != nil {
		return nil, err
	}
	results, err := sc.runAnalysis()
	if err != nil {
		return nil, err
	}
	if cmd.options.Bool("json") {
		bts, err := json.Marshal(analyzer.Top(results, top))
		if err != nil {
			return nil, err
		}
		return msg(string(bts)), nil
	}
	if len(results) == 0 {
		return msg("no template matches any tile of this hand"), nil
	}
	return msg(resultsTable(analyzer.Top(results, top))), nil
}

func resultsTable(results []analyzer.TemplateMatchSummary) string {
	var sb strings.Builder
	sb.WriteString("  #  Template                     Match    %    Variant\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%3d: %s\n", i+1, r.String())
	}
	return sb.String()
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.lastResults == nil {
		return nil, errNoResults
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: show <rank> [variation]")
	}
	rank, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if rank < 1 || rank > len(sc.lastResults) {
		return nil, fmt.Errorf("rank %d out of range (1-%d)", rank, len(sc.lastResults))
	}
	summary := sc.lastResults[rank-1]
	res := summary.BestMatch
	if len(cmd.args) > 1 {
		vi, err := strconv.Atoi(cmd.args[1])
		if err != nil {
			return nil, err
		}
		res, err = summary.Tied(vi - 1)
		if err != nil {
			return nil, err
		}
	}
	ht, ok := sc.lib.ByID(summary.TemplateID)
	if !ok || res.OriginalVariationIndex < 0 || res.OriginalVariationIndex >= len(ht.Variations) {
		return nil, fmt.Errorf("template %s is no longer in the loaded library", summary.TemplateID)
	}
	return msg(matchDetail(summary, res, ht.Variations[res.OriginalVariationIndex], sc.hand)), nil
}

func matchDetail(s analyzer.TemplateMatchSummary, res matcher.MatchResult,
	v template.Variant, hand tile.Hand) string {

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]  %s\n", s.TemplateName, s.Category, s.Image)
	pos := 0
	for i, r := range s.MaxMatchedVariationsList {
		if r.OriginalVariationIndex == res.OriginalVariationIndex {
			pos = i + 1
		}
	}
	fmt.Fprintf(&sb, "variant %q (%d of %d tied, %d variations)\n",
		res.VariantName, pos, s.MaxMatchedVariations, s.VariantCount)
	fmt.Fprintf(&sb, "matched %d/%d (%d%%), %d jokers used\n",
		res.MatchedCount, res.TotalTiles, res.MatchPercentage, res.WildcardsUsed(hand))

	bySlot := lo.SliceToMap(res.Assignments, func(a matcher.Assignment) (int, matcher.Assignment) {
		return a.SlotIndex, a
	})
	for j, rt := range v.RequiredTiles {
		a, ok := bySlot[j]
		switch {
		case !ok:
			fmt.Fprintf(&sb, "  %2d %-4s  -\n", j, rt.Code)
		case a.Wildcard:
			fmt.Fprintf(&sb, "  %2d %-4s  %d:%s (joker)\n", j, rt.Code, a.HandIndex, hand[a.HandIndex].Code)
		default:
			fmt.Fprintf(&sb, "  %2d %-4s  %d:%s\n", j, rt.Code, a.HandIndex, hand[a.HandIndex].Code)
		}
	}
	fmt.Fprintf(&sb, "hand indices: %v", res.MatchedTileIndices)
	return sb.String()
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(fmt.Sprintf("strategy: %s\nlocale: %s",
			sc.analyzer.StrategyName(), sc.analyzer.Locale())), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set strategy|locale <value>")
	}
	opt, val := cmd.args[0], cmd.args[1]
	strategy := sc.analyzer.StrategyName()
	locale := sc.analyzer.Locale().String()
	switch opt {
	case config.ConfigStrategy:
		strategy = val
	case config.ConfigLocale:
		locale = val
	default:
		return nil, fmt.Errorf("unknown setting %q", opt)
	}
	a, err := sc.buildAnalyzer(strategy, locale)
	if err != nil {
		return nil, err
	}
	sc.analyzer = a
	sc.config.Set(opt, val)
	sc.lastResults = nil
	return msg("set " + opt + " to " + val), nil
}

func (sc *ShellController) validate(cmd *shellcmd) (*Response, error) {
	if sc.lib == nil {
		return nil, errNoLibrary
	}
	warnings := sc.lib.Validate()
	if len(warnings) == 0 {
		return msg("library is clean"), nil
	}
	lines := lo.Map(warnings, func(w template.Warning, _ int) string { return w.String() })
	return msg(fmt.Sprintf("%d warnings:\n%s", len(warnings), strings.Join(lines, "\n"))), nil
}
