package analyzer

import (
	"sort"

	"github.com/samber/lo"

	"github.com/domino14/handmatch/tile"
)

// BatchHandResult represents the results for a single hand in a batch analysis
type BatchHandResult struct {
	Hand      tile.Hand
	Summaries []TemplateMatchSummary
}

// BestPercentage is the match percentage of the top summary, or 0 if the
// hand matched nothing.
func (r *BatchHandResult) BestPercentage() int {
	if len(r.Summaries) == 0 {
		return 0
	}
	return r.Summaries[0].BestMatch.MatchPercentage
}

// BatchTemplateStats represents aggregate statistics for a template across
// many hands
type BatchTemplateStats struct {
	TemplateID      string
	TemplateName    string
	TimesBest       int // hands where this template ranked first
	TimesListed     int // hands where it matched at all
	TotalPercentage float64
	AvgPercentage   float64
}

// BatchAnalysisResult represents the aggregate results of analyzing many hands
type BatchAnalysisResult struct {
	Hands         []*BatchHandResult
	TemplateStats map[string]*BatchTemplateStats
	TotalHands    int
	MatchedHands  int
	EmptyHands    int
}

// NewBatchAnalysisResult creates a new BatchAnalysisResult
func NewBatchAnalysisResult() *BatchAnalysisResult {
	return &BatchAnalysisResult{
		Hands:         make([]*BatchHandResult, 0),
		TemplateStats: make(map[string]*BatchTemplateStats),
	}
}

// AddHandResult adds a hand result to the batch and updates aggregate statistics
func (b *BatchAnalysisResult) AddHandResult(r *BatchHandResult) {
	b.Hands = append(b.Hands, r)
	b.TotalHands++

	if len(r.Summaries) == 0 {
		b.EmptyHands++
		return
	}
	b.MatchedHands++

	for i, s := range r.Summaries {
		st, ok := b.TemplateStats[s.TemplateID]
		if !ok {
			st = &BatchTemplateStats{TemplateID: s.TemplateID, TemplateName: s.TemplateName}
			b.TemplateStats[s.TemplateID] = st
		}
		st.TimesListed++
		st.TotalPercentage += float64(s.BestMatch.MatchPercentage)
		if i == 0 {
			st.TimesBest++
		}
	}
}

// CalculateAverages calculates average statistics for all templates
func (b *BatchAnalysisResult) CalculateAverages() {
	for _, st := range b.TemplateStats {
		if st.TimesListed > 0 {
			st.AvgPercentage = st.TotalPercentage / float64(st.TimesListed)
		}
	}
}

// BestPercentages returns the top match percentage of every hand, in order.
func (b *BatchAnalysisResult) BestPercentages() []float64 {
	return lo.Map(b.Hands, func(r *BatchHandResult, _ int) float64 {
		return float64(r.BestPercentage())
	})
}

// SortedTemplateStats returns template stats ordered by how often each
// template ranked first, then by id.
func (b *BatchAnalysisResult) SortedTemplateStats() []*BatchTemplateStats {
	out := lo.Values(b.TemplateStats)
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimesBest != out[j].TimesBest {
			return out[i].TimesBest > out[j].TimesBest
		}
		return out[i].TemplateID < out[j].TemplateID
	})
	return out
}
