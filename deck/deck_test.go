package deck

import (
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/domino14/handmatch/tile"
)

func seeded() *frand.RNG {
	return frand.NewCustom(make([]byte, 32), 1024, 12)
}

func TestCodes(t *testing.T) {
	is := is.New(t)
	codes := Codes()
	is.Equal(len(codes), TotalTiles)
	counts := map[string]int{}
	for _, c := range codes {
		counts[c]++
	}
	is.Equal(counts["1C"], 4)
	is.Equal(counts["9D"], 4)
	is.Equal(counts["N"], 4)
	is.Equal(counts[tile.GreenDragon], 4)
	is.Equal(counts[tile.Flower], 8)
	is.Equal(counts[tile.Joker], 8)
	is.Equal(len(counts), 27+4+3+2)
}

func TestDeal(t *testing.T) {
	is := is.New(t)
	d := New(seeded())
	is.Equal(d.Remaining(), TotalTiles)

	h, err := d.DealHand()
	is.NoErr(err)
	is.Equal(len(h), 14)
	is.Equal(d.Remaining(), TotalTiles-14)

	seen := map[string]bool{}
	for _, tl := range h {
		is.True(!seen[tl.ID])
		seen[tl.ID] = true
	}
}

func TestDealReshufflesDiscards(t *testing.T) {
	is := is.New(t)
	d := New(seeded())
	all, err := d.Deal(TotalTiles - 2)
	is.NoErr(err)
	is.Equal(d.Remaining(), 2)

	_, err = d.Deal(5)
	is.True(err != nil)

	d.Discard(all[:10]...)
	is.Equal(d.Discarded(), 10)
	h, err := d.Deal(5)
	is.NoErr(err)
	is.Equal(len(h), 5)
	is.Equal(d.Discarded(), 0)
	is.Equal(d.Remaining(), 7)

	_, err = d.Deal(-1)
	is.True(err != nil)
}

func TestSeededDeterministic(t *testing.T) {
	is := is.New(t)
	a, _ := New(seeded()).DealHand()
	b, _ := New(seeded()).DealHand()
	is.Equal(a.Codes(), b.Codes())

	d := New(nil)
	d.Reset()
	is.Equal(d.Remaining(), TotalTiles)
}
