package tile

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical "deck" tokens for the three dragons. Library files written by
// the template generator use a two-character form instead (Db, Dc, Dd), where
// the second character names the suit the dragon is associated with.
const (
	GreenDragon = "GD"
	RedDragon   = "RD"
	WhiteDragon = "WD"

	// DefaultDragon is what an unrecognized template-form dragon normalizes
	// to.
	DefaultDragon = RedDragon

	Joker     = "J"
	AltJoker  = "JK"
	Flower    = "F"
	dragonPfx = 'D'
)

var dragonSuits = map[byte]string{
	'b': GreenDragon,
	'c': RedDragon,
	'd': WhiteDragon,
}

// NormalizeCode canonicalizes dragon codes so that template and hand codes
// can be compared with plain string equality. Deck tokens pass through
// untouched; a two-character template form maps through the suit table,
// falling back to DefaultDragon. Any other code is returned as is.
func NormalizeCode(code string) string {
	switch code {
	case GreenDragon, RedDragon, WhiteDragon:
		return code
	}
	if len(code) == 2 && code[0] == dragonPfx {
		c := code[1]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if canon, ok := dragonSuits[c]; ok {
			return canon
		}
		return DefaultDragon
	}
	return code
}

// CanonicalCase upper-cases the suit letter of a numbered suit tile, so that
// the generator's "5b" and the deck's "5B" name the same tile. Every other
// code is returned unchanged.
func CanonicalCase(code string) string {
	if suitValue(code) == 0 {
		return code
	}
	return strings.ToUpper(code)
}

// IsWildcard returns true if the code is a joker token.
func IsWildcard(code string) bool {
	return code == Joker || code == AltJoker
}

// Tile is a single member of a hand. Matching only ever looks at the Code;
// the other fields are derived from it for display and ranking purposes.
type Tile struct {
	ID       string
	Code     string
	Value    int
	IsJoker  bool
	IsFlower bool
	IsHonor  bool
}

// New creates a tile and derives its flags from the code.
func New(id, code string) Tile {
	t := Tile{ID: id, Code: code}
	t.IsJoker = IsWildcard(code)
	t.IsFlower = isFlower(code)
	t.IsHonor = isHonor(code)
	t.Value = suitValue(code)
	return t
}

// IsWildcard returns true if this tile may stand in for any required tile.
// Tiles built as literals rather than through New are checked by code.
func (t Tile) IsWildcard() bool {
	return t.IsJoker || IsWildcard(t.Code)
}

func (t Tile) String() string {
	return t.Code
}

func isFlower(code string) bool {
	if code == Flower {
		return true
	}
	if len(code) == 2 && code[0] == 'F' && code[1] >= '1' && code[1] <= '8' {
		return true
	}
	return false
}

func isHonor(code string) bool {
	switch code {
	case "E", "S", "W", "N", GreenDragon, RedDragon, WhiteDragon:
		return true
	}
	return len(code) == 2 && code[0] == dragonPfx && NormalizeCode(code) != code
}

// suitValue returns the face value of a numbered suit tile (1C, 5b, 9D), or
// 0 for anything else.
func suitValue(code string) int {
	if len(code) != 2 {
		return 0
	}
	switch code[1] {
	case 'C', 'B', 'D', 'c', 'b', 'd':
	default:
		return 0
	}
	v, err := strconv.Atoi(code[:1])
	if err != nil || v < 1 {
		return 0
	}
	return v
}

// Hand is an ordered sequence of tiles. Match results refer to positions in
// this sequence, so callers that re-sort a hand for display must remap by
// tile ID.
type Hand []Tile

// HandFromCodes builds a hand from a list of codes. Tile IDs are
// tile-<index>; suit letters are put in canonical case.
func HandFromCodes(codes []string) Hand {
	h := make(Hand, len(codes))
	for i, c := range codes {
		h[i] = New(fmt.Sprintf("tile-%d", i), CanonicalCase(c))
	}
	return h
}

// HandFromString splits on whitespace and commas and builds a hand.
func HandFromString(s string) Hand {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	return HandFromCodes(fields)
}

// Codes returns the code of every tile, in order.
func (h Hand) Codes() []string {
	codes := make([]string, len(h))
	for i, t := range h {
		codes[i] = t.Code
	}
	return codes
}

// NumWildcards counts the jokers in the hand.
func (h Hand) NumWildcards() int {
	n := 0
	for _, t := range h {
		if t.IsWildcard() {
			n++
		}
	}
	return n
}

func (h Hand) String() string {
	return strings.Join(h.Codes(), " ")
}
