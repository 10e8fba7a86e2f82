package analyzer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/handmatch/matcher"
)

// TemplateMatchSummary is the result for one template: its best variant and
// every variant that tied with it on matched count.
type TemplateMatchSummary struct {
	TemplateID   string              `json:"templateId"`
	TemplateName string              `json:"templateName"`
	Category     string              `json:"category"`
	Image        string              `json:"image"`
	BestMatch    matcher.MatchResult `json:"bestMatch"`
	// VariantCount is the number of variations evaluated.
	VariantCount         int `json:"variantCount"`
	MaxMatchedVariations int `json:"maxMatchedVariations"`
	// MaxMatchedVariationsList holds the tied results in variation order.
	MaxMatchedVariationsList []matcher.MatchResult `json:"maxMatchedVariationsList"`
}

// Tied returns the i-th tied variant result.
func (s TemplateMatchSummary) Tied(i int) (matcher.MatchResult, error) {
	if i < 0 || i >= len(s.MaxMatchedVariationsList) {
		return matcher.MatchResult{}, fmt.Errorf("variation %d out of range (%d tied)",
			i, len(s.MaxMatchedVariationsList))
	}
	return s.MaxMatchedVariationsList[i], nil
}

// ByVariationIndex finds the tied result for the variation at the given
// position within the template.
func (s TemplateMatchSummary) ByVariationIndex(idx int) (matcher.MatchResult, bool) {
	return lo.Find(s.MaxMatchedVariationsList, func(r matcher.MatchResult) bool {
		return r.OriginalVariationIndex == idx
	})
}

func (s TemplateMatchSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-28s %3d/%-3d %3d%%  %s",
		s.TemplateName, s.BestMatch.MatchedCount, s.BestMatch.TotalTiles,
		s.BestMatch.MatchPercentage, s.BestMatch.VariantName)
	if s.MaxMatchedVariations > 1 {
		fmt.Fprintf(&sb, " (+%d tied)", s.MaxMatchedVariations-1)
	}
	return sb.String()
}

// Top returns the first n summaries. n <= 0 returns them all.
func Top(summaries []TemplateMatchSummary, n int) []TemplateMatchSummary {
	if n <= 0 || n >= len(summaries) {
		return summaries
	}
	return summaries[:n]
}
