// Package matcher scores one hand against one template variant. A match runs
// in two passes: real tiles are matched to slots with the same code, then
// jokers fill what is left, completing pungs, kongs and quints before any
// other slot.
package matcher

import (
	"math"

	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

// UnnamedVariant is reported for variants that carry no name.
const UnnamedVariant = "Unnamed"

// Assignment records which variant slot a hand tile was claimed for.
type Assignment struct {
	HandIndex int  `json:"handIndex"`
	SlotIndex int  `json:"slotIndex"`
	Wildcard  bool `json:"wildcard"`
}

// MatchResult is the outcome of matching one hand against one variant.
type MatchResult struct {
	TemplateID      string `json:"templateId"`
	TemplateName    string `json:"templateName"`
	VariantID       string `json:"variantId"`
	VariantName     string `json:"variantName"`
	MatchedCount    int    `json:"matchedCount"`
	TotalTiles      int    `json:"totalTiles"`
	MatchPercentage int    `json:"matchPercentage"`
	// MatchedTileIndices are hand positions, in the order they were
	// claimed: exact matches in hand order, then jokers in hand order.
	MatchedTileIndices []int        `json:"matchedTileIndices"`
	Assignments        []Assignment `json:"assignments"`
	// OriginalVariationIndex is the variant's position within its template.
	// It is -1 until set by the analyzer.
	OriginalVariationIndex int `json:"originalVariationIndex"`
}

// WildcardsUsed counts the claimed hand tiles that are jokers.
func (r MatchResult) WildcardsUsed(hand tile.Hand) int {
	n := 0
	for _, idx := range r.MatchedTileIndices {
		if idx >= 0 && idx < len(hand) && hand[idx].IsWildcard() {
			n++
		}
	}
	return n
}

// SlotFor returns the slot a hand index was claimed for.
func (r MatchResult) SlotFor(handIndex int) (int, bool) {
	for _, a := range r.Assignments {
		if a.HandIndex == handIndex {
			return a.SlotIndex, true
		}
	}
	return -1, false
}

// Matcher matches hands against variants using the configured strategy for
// the exact pass. The zero value uses Greedy.
type Matcher struct {
	strategy Strategy
}

// New creates a matcher. A nil strategy means Greedy.
func New(s Strategy) *Matcher {
	if s == nil {
		s = Greedy{}
	}
	return &Matcher{strategy: s}
}

// Strategy returns the strategy in use.
func (m *Matcher) Strategy() Strategy {
	if m == nil || m.strategy == nil {
		return Greedy{}
	}
	return m.strategy
}

// Match scores the hand against the variant with the default greedy
// strategy.
func Match(hand tile.Hand, v template.Variant, templateID, templateName string) MatchResult {
	return New(nil).Match(hand, v, templateID, templateName)
}

// Match scores the hand against the variant. It never fails; a hand that
// shares nothing with the variant yields a zero MatchedCount.
func (m *Matcher) Match(hand tile.Hand, v template.Variant, templateID, templateName string) MatchResult {
	// Work on a private copy so that callers sharing a library never see
	// each other's bookkeeping.
	v = v.Copy()
	slots := v.RequiredTiles
	claimed := make([]bool, len(slots))

	assignments := m.Strategy().ExactPass(hand, slots)
	for _, a := range assignments {
		claimed[a.SlotIndex] = true
	}

	groups := IdentifyGroups(v)

	for i, t := range hand {
		if !t.IsWildcard() {
			continue
		}
		slot := wildcardSlot(groups, claimed)
		if slot < 0 {
			// Nothing left to fill; remaining jokers go unused.
			break
		}
		claimed[slot] = true
		assignments = append(assignments, Assignment{HandIndex: i, SlotIndex: slot, Wildcard: true})
	}

	total := len(slots)
	res := MatchResult{
		TemplateID:             templateID,
		TemplateName:           templateName,
		VariantID:              v.ID,
		VariantName:            v.Name,
		MatchedCount:           len(assignments),
		TotalTiles:             total,
		MatchPercentage:        percentage(len(assignments), total),
		MatchedTileIndices:     make([]int, len(assignments)),
		Assignments:            assignments,
		OriginalVariationIndex: -1,
	}
	if res.VariantName == "" {
		res.VariantName = UnnamedVariant
	}
	for i, a := range assignments {
		res.MatchedTileIndices[i] = a.HandIndex
	}
	return res
}

// wildcardSlot picks the slot a joker should fill: the lowest open slot of
// the first group that is not complete, else the first open slot anywhere.
// It returns -1 when every slot is claimed.
func wildcardSlot(groups []Group, claimed []bool) int {
	for _, g := range groups {
		for _, idx := range g.Indices {
			if !claimed[idx] {
				return idx
			}
		}
	}
	for j, c := range claimed {
		if !c {
			return j
		}
	}
	return -1
}

func percentage(matched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(matched)/float64(total)*100 + 0.5))
}
