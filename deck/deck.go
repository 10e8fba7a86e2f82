// Package deck is the full American-style tile set, used to deal random
// hands for the shell and for batch runs.
package deck

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/handmatch/template"
	"github.com/domino14/handmatch/tile"
)

const (
	// TotalTiles is the size of a fresh deck.
	TotalTiles    = 152
	copiesPerFace = 4
	numFlowers    = 8
	numJokers     = 8
)

var (
	suits   = []byte{'C', 'B', 'D'}
	winds   = []string{"E", "S", "W", "N"}
	dragons = []string{tile.RedDragon, tile.GreenDragon, tile.WhiteDragon}
)

// Codes returns the code of every tile in a fresh, unshuffled deck.
func Codes() []string {
	codes := make([]string, 0, TotalTiles)
	for _, s := range suits {
		for v := 1; v <= 9; v++ {
			for i := 0; i < copiesPerFace; i++ {
				codes = append(codes, fmt.Sprintf("%d%c", v, s))
			}
		}
	}
	for _, group := range [][]string{winds, dragons} {
		for _, c := range group {
			for i := 0; i < copiesPerFace; i++ {
				codes = append(codes, c)
			}
		}
	}
	for i := 0; i < numFlowers; i++ {
		codes = append(codes, tile.Flower)
	}
	for i := 0; i < numJokers; i++ {
		codes = append(codes, tile.Joker)
	}
	return codes
}

// A Deck is the wall tiles are dealt from, plus a discard pile that is
// shuffled back in when the wall runs short.
type Deck struct {
	wall     []tile.Tile
	discards []tile.Tile
	rng      *frand.RNG
}

// New creates a shuffled deck. A nil rng uses the package-level frand
// source.
func New(rng *frand.RNG) *Deck {
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset rebuilds the full deck, empties the discards and shuffles.
func (d *Deck) Reset() {
	codes := Codes()
	d.wall = make([]tile.Tile, len(codes))
	for i, c := range codes {
		d.wall[i] = tile.New(fmt.Sprintf("deck-%d", i), c)
	}
	d.discards = nil
	d.Shuffle()
}

// Shuffle shuffles the wall in place.
func (d *Deck) Shuffle() {
	swap := func(i, j int) { d.wall[i], d.wall[j] = d.wall[j], d.wall[i] }
	if d.rng != nil {
		d.rng.Shuffle(len(d.wall), swap)
		return
	}
	frand.Shuffle(len(d.wall), swap)
}

// Deal takes n tiles off the wall. If the wall is short, the discards are
// shuffled back in first. It fails only if wall and discards together hold
// fewer than n tiles.
func (d *Deck) Deal(n int) (tile.Hand, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot deal %d tiles", n)
	}
	if len(d.wall) < n {
		log.Debug().Int("wall", len(d.wall)).Int("discards", len(d.discards)).
			Msg("reshuffling-discards")
		d.wall = append(d.wall, d.discards...)
		d.discards = nil
		d.Shuffle()
	}
	if len(d.wall) < n {
		return nil, fmt.Errorf("tried to deal %v tiles, deck has %v", n, len(d.wall))
	}
	hand := make(tile.Hand, n)
	copy(hand, d.wall[:n])
	d.wall = d.wall[n:]
	return hand, nil
}

// DealHand deals a standard-size hand.
func (d *Deck) DealHand() (tile.Hand, error) {
	return d.Deal(template.StandardHandSize)
}

// Discard puts tiles on the discard pile.
func (d *Deck) Discard(tiles ...tile.Tile) {
	d.discards = append(d.discards, tiles...)
}

// Remaining returns the number of tiles left on the wall.
func (d *Deck) Remaining() int {
	return len(d.wall)
}

// Discarded returns the size of the discard pile.
func (d *Deck) Discarded() int {
	return len(d.discards)
}
