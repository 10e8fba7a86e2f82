package matcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

var ErrUnknownStrategy = errors.New("unknown match strategy")

const (
	GreedyName  = "greedy"
	MaximumName = "maximum"
)

// Strategy assigns non-joker hand tiles to variant slots of the same code.
// Jokers are never assigned by a strategy. Returned assignments are sorted
// by hand index and no slot appears twice.
type Strategy interface {
	Name() string
	ExactPass(hand tile.Hand, slots []template.RequiredTile) []Assignment
}

// StrategyFromName looks up a strategy by its configured name.
func StrategyFromName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GreedyName:
		return Greedy{}, nil
	case MaximumName, "max":
		return MaxMatching{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func normalizedSlots(slots []template.RequiredTile) []string {
	norm := make([]string, len(slots))
	for j, s := range slots {
		norm[j] = tile.NormalizeCode(s.Code)
	}
	return norm
}

// Greedy walks the hand in order and gives each tile the first open slot
// with the same code.
type Greedy struct{}

func (Greedy) Name() string { return GreedyName }

func (Greedy) ExactPass(hand tile.Hand, slots []template.RequiredTile) []Assignment {
	norm := normalizedSlots(slots)
	claimed := make([]bool, len(slots))
	var out []Assignment
	for i, t := range hand {
		if t.IsWildcard() {
			continue
		}
		code := tile.NormalizeCode(t.Code)
		for j := range slots {
			if !claimed[j] && norm[j] == code {
				claimed[j] = true
				out = append(out, Assignment{HandIndex: i, SlotIndex: j})
				break
			}
		}
	}
	return out
}

// MaxMatching computes a maximum bipartite matching between hand tiles and
// slots with augmenting paths. Under plain code equality it always claims as
// many slots as Greedy does, but it keeps working if compatibility ever stops
// being an equivalence.
type MaxMatching struct{}

func (MaxMatching) Name() string { return MaximumName }

func (MaxMatching) ExactPass(hand tile.Hand, slots []template.RequiredTile) []Assignment {
	norm := normalizedSlots(slots)
	adj := make([][]int, len(hand))
	for i, t := range hand {
		if t.IsWildcard() {
			continue
		}
		code := tile.NormalizeCode(t.Code)
		for j := range slots {
			if norm[j] == code {
				adj[i] = append(adj[i], j)
			}
		}
	}

	// slotOwner[j] is the hand index holding slot j, or -1.
	slotOwner := make([]int, len(slots))
	for j := range slotOwner {
		slotOwner[j] = -1
	}
	var augment func(i int, seen []bool) bool
	augment = func(i int, seen []bool) bool {
		for _, j := range adj[i] {
			if seen[j] {
				continue
			}
			seen[j] = true
			if slotOwner[j] == -1 || augment(slotOwner[j], seen) {
				slotOwner[j] = i
				return true
			}
		}
		return false
	}
	for i := range hand {
		if len(adj[i]) == 0 {
			continue
		}
		augment(i, make([]bool, len(slots)))
	}

	var out []Assignment
	for j, i := range slotOwner {
		if i >= 0 {
			out = append(out, Assignment{HandIndex: i, SlotIndex: j})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].HandIndex < out[b].HandIndex })
	return out
}
