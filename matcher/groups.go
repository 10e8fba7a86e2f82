package matcher

import (
	"github.com/domino14/handmatch/template"
)

// MinGroupSize is the smallest group size treated as a pung/kong/quint.
const MinGroupSize = 3

// Group is a run of required-tile slots that make up one pung, kong or quint.
type Group struct {
	ID      int
	Code    string
	Size    int
	Indices []int
}

type groupKey struct {
	code string
	size int
}

type groupStart struct {
	key   groupKey
	start int
}

// IdentifyGroups derives the same-code groups of a variant from its
// structure alone. Only the first slot seen for each (code, size) pair starts
// a group, so a variant listing two separate pungs of the same tile yields a
// single group for the first of them. A group covers Size consecutive slots
// from its start, clipped to the end of the variant. Groups are numbered in
// the order their keys were first seen.
func IdentifyGroups(v template.Variant) []Group {
	var starts []groupStart
	for i, rt := range v.RequiredTiles {
		if rt.GroupSize < MinGroupSize {
			continue
		}
		k := groupKey{code: rt.Code, size: rt.GroupSize}
		if !hasKey(starts, k) {
			starts = append(starts, groupStart{key: k, start: i})
		}
	}

	groups := make([]Group, 0, len(starts))
	for id, gs := range starts {
		g := Group{ID: id, Code: gs.key.code, Size: gs.key.size}
		for i := 0; i < gs.key.size; i++ {
			idx := gs.start + i
			if idx >= len(v.RequiredTiles) {
				break
			}
			g.Indices = append(g.Indices, idx)
		}
		groups = append(groups, g)
	}
	return groups
}

func hasKey(starts []groupStart, k groupKey) bool {
	for _, s := range starts {
		if s.key == k {
			return true
		}
	}
	return false
}
