package template

import (
	"fmt"

	"github.com/samber/lo"
)

// Warning describes a suspicious template or variation. Warnings never stop
// analysis; templates without variations are simply skipped by the analyzer.
type Warning struct {
	TemplateID string
	VariantID  string
	Message    string
}

func (w Warning) String() string {
	if w.VariantID == "" {
		return w.TemplateID + ": " + w.Message
	}
	return w.TemplateID + "/" + w.VariantID + ": " + w.Message
}

// Validate reports templates with no variations, variations that do not list
// exactly StandardHandSize tiles, and group runs whose length is not a
// multiple of the declared group size.
func (l *Library) Validate() []Warning {
	var warnings []Warning
	seen := map[string]bool{}
	for _, t := range l.Templates {
		if seen[t.ID] {
			warnings = append(warnings, Warning{TemplateID: t.ID, Message: "duplicate template id"})
		}
		seen[t.ID] = true
		if len(t.Variations) == 0 {
			warnings = append(warnings, Warning{TemplateID: t.ID, Message: "no variations"})
			continue
		}
		for _, v := range t.Variations {
			if v.NumTiles() != StandardHandSize {
				warnings = append(warnings, Warning{
					TemplateID: t.ID, VariantID: v.ID,
					Message: fmt.Sprintf("has %d tiles, expected %d", v.NumTiles(), StandardHandSize),
				})
			}
			for _, msg := range groupRunProblems(v) {
				warnings = append(warnings, Warning{TemplateID: t.ID, VariantID: v.ID, Message: msg})
			}
		}
	}
	return warnings
}

// EmptyTemplates lists the ids of templates that have no variations.
func (l *Library) EmptyTemplates() []string {
	return lo.FilterMap(l.Templates, func(t HandTemplate, _ int) (string, bool) {
		return t.ID, len(t.Variations) == 0
	})
}

func groupRunProblems(v Variant) []string {
	var problems []string
	rts := v.RequiredTiles
	for i := 0; i < len(rts); {
		j := i + 1
		for j < len(rts) && rts[j].Code == rts[i].Code && rts[j].GroupSize == rts[i].GroupSize {
			j++
		}
		run := j - i
		if size := rts[i].GroupSize; size > 1 && run%size != 0 {
			problems = append(problems, fmt.Sprintf(
				"run of %d %s tiles at position %d does not fill groups of %d",
				run, rts[i].Code, i, size))
		}
		i = j
	}
	return problems
}
