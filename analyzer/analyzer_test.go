package analyzer

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

func tmpl(id, name string, vs ...template.Variant) template.HandTemplate {
	return template.HandTemplate{ID: id, Name: name, Category: "test", Variations: vs}
}

func TestRankerPrefersFewerJokers(t *testing.T) {
	is := is.New(t)
	hand := tile.HandFromString("5B 5B J J")
	twoJokers := template.MustVariant("b", "alpha", "5B", "9C", "9C")
	oneJoker := template.MustVariant("a", "zeta", "5B,3", "5B,3", "5B,3")

	sums := Analyze(hand, []template.HandTemplate{tmpl("t", "T", twoJokers, oneJoker)})
	is.Equal(len(sums), 1)
	s := sums[0]
	is.Equal(s.MaxMatchedVariations, 2)
	is.Equal(s.BestMatch.MatchedCount, 3)
	is.Equal(s.BestMatch.VariantName, "zeta")
	is.Equal(s.BestMatch.OriginalVariationIndex, 1)
	is.Equal(s.BestMatch.WildcardsUsed(hand), 1)
}

func TestRankerFallsBackToName(t *testing.T) {
	is := is.New(t)
	r := NewRanker(language.Und)
	hand := tile.HandFromString("1C")
	a := matcher.MatchResult{MatchedCount: 1, MatchedTileIndices: []int{0}, VariantName: "alpha"}
	b := matcher.MatchResult{MatchedCount: 1, MatchedTileIndices: []int{0}, VariantName: "Beta"}
	// collation, not byte order
	is.True(r.IsBetter(a, b, hand))
	is.True(!r.IsBetter(b, a, hand))
	// equal on everything: neither is better
	is.True(!r.IsBetter(a, a, hand))

	more := matcher.MatchResult{MatchedCount: 2, VariantName: "zzz"}
	is.True(r.IsBetter(more, a, hand))
}

func TestRankerBestKeepsFirstOfEquals(t *testing.T) {
	is := is.New(t)
	r := NewRanker(language.Und)
	hand := tile.HandFromString("1C")
	rs := []matcher.MatchResult{
		{MatchedCount: 1, VariantName: "same", OriginalVariationIndex: 0},
		{MatchedCount: 1, VariantName: "same", OriginalVariationIndex: 1},
	}
	is.Equal(r.Best(rs, hand).OriginalVariationIndex, 0)
}

func TestSortByCountThenName(t *testing.T) {
	is := is.New(t)
	hand := tile.HandFromString("1C 1C 1C N")
	lib := []template.HandTemplate{
		tmpl("z", "Zed", template.MustVariant("z1", "z", "1C", "2C")),
		tmpl("b", "bravo", template.MustVariant("b1", "b", "1C", "3C")),
		tmpl("a", "Alpha", template.MustVariant("a1", "a", "1C", "4C")),
		tmpl("top", "Winner", template.MustVariant("w1", "w", "1C,3", "1C,3", "1C,3", "N")),
	}
	sums := Analyze(hand, lib)
	ids := make([]string, len(sums))
	for i, s := range sums {
		ids[i] = s.TemplateID
	}
	is.Equal(ids, []string{"top", "a", "b", "z"})
}

func TestEmptyInputs(t *testing.T) {
	is := is.New(t)
	lib, err := template.LoadLibrary("../testdata/library.json")
	is.NoErr(err)

	res := Analyze(tile.Hand{}, lib.Templates)
	is.Equal(len(res), 0)
	is.True(res != nil)

	res = Analyze(tile.HandFromString("1C"), nil)
	is.Equal(len(res), 0)
}

func TestTemplatesWithoutVariationsExcluded(t *testing.T) {
	is := is.New(t)
	hand := tile.HandFromString("J J J J 1C")
	lib := []template.HandTemplate{
		tmpl("empty", "Empty"),
		tmpl("one", "One", template.MustVariant("v", "v", "1C")),
	}
	sums := Analyze(hand, lib)
	is.Equal(len(sums), 1)
	is.Equal(sums[0].TemplateID, "one")
}

func TestZeroScoreTemplatesDropped(t *testing.T) {
	is := is.New(t)
	hand := tile.HandFromString("9D 9D")
	lib := []template.HandTemplate{
		tmpl("miss", "Miss", template.MustVariant("v", "v", "1C", "2C")),
		tmpl("hit", "Hit", template.MustVariant("v", "v", "1C", "9D")),
	}
	sums := Analyze(hand, lib)
	is.Equal(len(sums), 1)
	is.Equal(sums[0].TemplateID, "hit")
}

func TestSummaryFields(t *testing.T) {
	is := is.New(t)
	hand := tile.HandFromString("1C 2C")
	withImage := tmpl("i", "Imaged",
		template.MustVariant("v1", "one", "1C", "2C"),
		template.MustVariant("v2", "two", "1C", "3C"),
		template.MustVariant("v3", "three", "2C", "1C"))
	withImage.Image = "12 3"
	noImage := tmpl("n", "Plain", template.MustVariant("v1", "one", "1C"))

	sums := Analyze(hand, []template.HandTemplate{withImage, noImage})
	is.Equal(len(sums), 2)

	s := sums[0]
	is.Equal(s.TemplateID, "i")
	is.Equal(s.Image, "12 3")
	is.Equal(s.Category, "test")
	is.Equal(s.VariantCount, 3)
	is.Equal(s.MaxMatchedVariations, 2)
	is.Equal(s.MaxMatchedVariationsList[0].OriginalVariationIndex, 0)
	is.Equal(s.MaxMatchedVariationsList[1].OriginalVariationIndex, 2)
	// "one" sorts before "three"
	is.Equal(s.BestMatch.VariantID, "v1")

	_, ok := s.ByVariationIndex(1)
	is.True(!ok)
	tied, err := s.Tied(1)
	is.NoErr(err)
	is.Equal(tied.VariantID, "v3")
	_, err = s.Tied(2)
	is.True(err != nil)

	is.Equal(sums[1].Image, "Plain")
}

func TestAnalyzeDoesNotMutateLibrary(t *testing.T) {
	lib, err := template.LoadLibrary("../testdata/library.json")
	assert.NoError(t, err)
	before, err := template.LoadLibrary("../testdata/library.json")
	assert.NoError(t, err)

	hand := tile.HandFromString("1B 1B 2B 3B 4B 5B 1C 1C 1C 1C J J F F")
	first := Analyze(hand, lib.Templates)
	second := Analyze(hand, lib.Templates)
	assert.Equal(t, first, second)
	assert.Equal(t, before, lib)
	assert.NotEmpty(t, first)

	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].BestMatch.MatchedCount, first[i].BestMatch.MatchedCount)
	}
}

func TestStrategiesAgreeOnLibrary(t *testing.T) {
	lib, err := template.LoadLibrary("../testdata/library.json")
	assert.NoError(t, err)
	maxA, err := New(Options{Strategy: matcher.MaxMatching{}})
	assert.NoError(t, err)
	assert.Equal(t, "maximum", maxA.StrategyName())

	hand := tile.HandFromString("3C 3C 3C 6C 6C 6C 6C J 9C 9C 9C GD RD WD")
	g := Analyze(hand, lib.Templates)
	m := maxA.Analyze(hand, lib.Templates)
	assert.Equal(t, len(g), len(m))
	for i := range g {
		assert.Equal(t, g[i].TemplateID, m[i].TemplateID)
		assert.Equal(t, g[i].BestMatch.MatchedCount, m[i].BestMatch.MatchedCount)
	}
}

func TestNewRejectsBadLocale(t *testing.T) {
	_, err := New(Options{Locale: "not a locale!"})
	assert.Error(t, err)
	a, err := New(Options{Locale: "en-US"})
	assert.NoError(t, err)
	assert.Equal(t, language.MustParse("en-US"), a.Locale())
}

func TestAnalyzeBatch(t *testing.T) {
	is := is.New(t)
	lib, err := template.LoadLibrary("../testdata/library.json")
	is.NoErr(err)
	a, err := New(Options{Threads: 2})
	is.NoErr(err)

	hands := []tile.Hand{
		tile.HandFromString("1B 1B 2B 3B 4B 5B 1C 1C 1C 1C J J F F"),
		tile.HandFromString(""),
		tile.HandFromString("2D 2D 4D 4D 6D J J JK N N E W S F"),
	}
	out, err := a.AnalyzeBatch(context.Background(), hands, lib.Templates)
	is.NoErr(err)
	is.Equal(len(out), 3)
	for i, h := range hands {
		is.Equal(out[i], a.Analyze(h, lib.Templates))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.AnalyzeBatch(ctx, hands, lib.Templates)
	is.Equal(err, context.Canceled)
}

func TestBatchAnalysisResult(t *testing.T) {
	is := is.New(t)
	hand := tile.HandFromString("1C 2C")
	lib := []template.HandTemplate{
		tmpl("a", "A", template.MustVariant("v", "v", "1C", "2C")),
		tmpl("b", "B", template.MustVariant("v", "v", "1C", "3C")),
	}
	b := NewBatchAnalysisResult()
	b.AddHandResult(&BatchHandResult{Hand: hand, Summaries: Analyze(hand, lib)})
	b.AddHandResult(&BatchHandResult{Hand: tile.HandFromString("N")})
	b.CalculateAverages()

	is.Equal(b.TotalHands, 2)
	is.Equal(b.MatchedHands, 1)
	is.Equal(b.EmptyHands, 1)
	is.Equal(b.BestPercentages(), []float64{100, 0})
	stats := b.SortedTemplateStats()
	is.Equal(len(stats), 2)
	is.Equal(stats[0].TemplateID, "a")
	is.Equal(stats[0].TimesBest, 1)
	is.Equal(stats[1].AvgPercentage, 50.0)
	is.Equal(len(Top(Analyze(hand, lib), 1)), 1)
	is.Equal(len(Top(Analyze(hand, lib), 0)), 2)
}
