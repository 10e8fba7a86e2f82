package analyzer

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/domino14/handmatch/matcher"
	"github.com/domino14/handmatch/tile"
)

// Ranker orders variants that tied at a template's best score. A Ranker
// holds a collator and must not be shared between goroutines.
type Ranker struct {
	col *collate.Collator
}

// NewRanker creates a ranker that compares variant names in the given
// locale.
func NewRanker(tag language.Tag) *Ranker {
	return &Ranker{col: collate.New(tag)}
}

// IsBetter returns true if a should be preferred over b. More matched tiles
// wins, then fewer jokers used, then the variant name that sorts first. If
// a and b are equal on all three, neither is better.
func (r *Ranker) IsBetter(a, b matcher.MatchResult, hand tile.Hand) bool {
	if a.MatchedCount != b.MatchedCount {
		return a.MatchedCount > b.MatchedCount
	}
	wa, wb := a.WildcardsUsed(hand), b.WildcardsUsed(hand)
	if wa != wb {
		return wa < wb
	}
	return r.compare(a.VariantName, b.VariantName) < 0
}

// Best folds IsBetter left to right over the results, keeping the running
// best. The first of several equal results is kept. Best panics on an empty
// slice.
func (r *Ranker) Best(results []matcher.MatchResult, hand tile.Hand) matcher.MatchResult {
	best := results[0]
	for _, res := range results[1:] {
		if r.IsBetter(res, best, hand) {
			best = res
		}
	}
	return best
}

func (r *Ranker) compare(a, b string) int {
	return r.col.CompareString(a, b)
}
