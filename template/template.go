// Package template holds the hand-shape library: templates, their variants,
// and the required tiles each variant lists. It also knows how to read the
// flat library format produced by the template generator.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/handmatch/tile"
)

// StandardHandSize is the number of tiles a complete variation lists.
const StandardHandSize = 14

// RequiredTile is one slot of a variant. GroupSize is 1 for a singleton; 3 or
// more marks membership in a pung, kong or quint.
type RequiredTile struct {
	Code      string `json:"code" yaml:"code"`
	GroupSize int    `json:"groupSize" yaml:"groupSize"`
	Position  int    `json:"position" yaml:"position"`
}

func (r RequiredTile) String() string {
	return r.Code + "," + strconv.Itoa(r.GroupSize)
}

// Variant is one concrete way of satisfying a template.
type Variant struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	RequiredTiles []RequiredTile `json:"requiredTiles" yaml:"requiredTiles"`
}

// Copy returns a variant whose required-tile slice does not alias the
// receiver's.
func (v Variant) Copy() Variant {
	n := Variant{ID: v.ID, Name: v.Name}
	n.RequiredTiles = make([]RequiredTile, len(v.RequiredTiles))
	copy(n.RequiredTiles, v.RequiredTiles)
	return n
}

// NumTiles is the length of the required-tile sequence.
func (v Variant) NumTiles() int {
	return len(v.RequiredTiles)
}

// Codes lists the required codes in position order.
func (v Variant) Codes() []string {
	codes := make([]string, len(v.RequiredTiles))
	for i, rt := range v.RequiredTiles {
		codes[i] = rt.Code
	}
	return codes
}

func (v Variant) String() string {
	return strings.Join(v.Codes(), " ")
}

// HandTemplate is a named, categorized collection of variants.
type HandTemplate struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string    `json:"category" yaml:"category"`
	CatID       string    `json:"catid,omitempty" yaml:"catid,omitempty"`
	Image       string    `json:"image,omitempty" yaml:"image,omitempty"`
	Variations  []Variant `json:"variations" yaml:"variations"`
}

// Library is an ordered set of templates.
type Library struct {
	Version   string         `json:"version" yaml:"version"`
	Templates []HandTemplate `json:"templates" yaml:"templates"`
}

// ByID looks up a template.
func (l *Library) ByID(id string) (HandTemplate, bool) {
	for _, t := range l.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return HandTemplate{}, false
}

// NumVariations counts every variation in the library.
func (l *Library) NumVariations() int {
	n := 0
	for _, t := range l.Templates {
		n += len(t.Variations)
	}
	return n
}

// ParseFlatTile parses a "code,groupSize" entry as written by the template
// generator. A missing group size means a singleton.
func ParseFlatTile(spec string, position int) (RequiredTile, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return RequiredTile{}, fmt.Errorf("empty tile spec at position %d", position)
	}
	code, sizeStr, found := strings.Cut(spec, ",")
	code = tile.CanonicalCase(strings.TrimSpace(code))
	if code == "" {
		return RequiredTile{}, fmt.Errorf("tile spec %q has no code", spec)
	}
	size := 1
	if found {
		var err error
		size, err = strconv.Atoi(strings.TrimSpace(sizeStr))
		if err != nil {
			return RequiredTile{}, fmt.Errorf("tile spec %q: bad group size: %w", spec, err)
		}
		if size < 1 {
			return RequiredTile{}, fmt.Errorf("tile spec %q: group size must be positive", spec)
		}
	}
	return RequiredTile{Code: code, GroupSize: size, Position: position}, nil
}

// NewVariant builds a variant from flat tile specs.
func NewVariant(id, name string, specs []string) (Variant, error) {
	v := Variant{ID: id, Name: name, RequiredTiles: make([]RequiredTile, 0, len(specs))}
	for i, s := range specs {
		rt, err := ParseFlatTile(s, i)
		if err != nil {
			return Variant{}, fmt.Errorf("variant %s: %w", id, err)
		}
		v.RequiredTiles = append(v.RequiredTiles, rt)
	}
	return v, nil
}

// MustVariant is NewVariant for literals in tests and fixtures.
func MustVariant(id, name string, specs ...string) Variant {
	v, err := NewVariant(id, name, specs)
	if err != nil {
		panic(err)
	}
	return v
}
