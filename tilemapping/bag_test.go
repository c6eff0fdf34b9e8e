package tilemapping

import (
	"strings"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"
)

func seededRNG() *frand.RNG {
	return frand.NewCustom(make([]byte, 32), 1024, 12)
}

func TestBag(t *testing.T) {
	is := is.New(t)

	ld := EnglishLetterDistribution()
	bag := NewBag(ld, seededRNG())
	is.Equal(bag.Remaining(), ld.NumTotalLetters())

	tileMap := make(map[rune]int)
	for !bag.IsEmpty() {
		drawn := bag.Draw(1)
		is.Equal(len(drawn), 1)
		tileMap[drawn[0].Letter]++
		is.Equal(drawn[0].Points, ld.Score(drawn[0].Letter))
	}
	for _, l := range ld.Letters() {
		is.Equal(tileMap[l], ld.Count(l))
	}
	is.Equal(len(bag.Draw(1)), 0)
}

func TestDraw(t *testing.T) {
	is := is.New(t)

	bag := NewBag(EnglishLetterDistribution(), seededRNG())
	drawn := bag.Draw(7)
	is.Equal(len(drawn), 7)
	is.Equal(bag.Remaining(), 93)
}

func TestDrawAtMost(t *testing.T) {
	is := is.New(t)

	bag := NewBag(EnglishLetterDistribution(), seededRNG())
	for i := 0; i < 14; i++ {
		is.Equal(len(bag.Draw(7)), 7)
	}
	is.Equal(bag.Remaining(), 2)
	drawn := bag.Draw(7)
	is.Equal(len(drawn), 2)
	is.Equal(bag.Remaining(), 0)
	is.True(bag.IsEmpty())
}

func TestReturn(t *testing.T) {
	is := is.New(t)

	ld := EnglishLetterDistribution()
	bag := NewBag(ld, seededRNG())
	drawn := bag.Draw(7)
	bag.Return(drawn)
	is.Equal(bag.Remaining(), 100)

	drawn = bag.Draw(3)
	bag.ReturnLetters(Letters(drawn))
	is.Equal(bag.Remaining(), 100)
}

func TestShuffleIsDeterministicWithSeed(t *testing.T) {
	is := is.New(t)

	ld := EnglishLetterDistribution()
	b1 := NewBag(ld, seededRNG())
	b2 := NewBag(ld, seededRNG())
	is.Equal(b1.Draw(20), b2.Draw(20))
}

func TestRemoveTiles(t *testing.T) {
	is := is.New(t)

	bag := NewBag(EnglishLetterDistribution(), seededRNG())
	is.NoErr(bag.RemoveTiles([]rune("QZJX")))
	is.Equal(bag.Remaining(), 96)
	is.True(bag.RemoveTiles([]rune("Q")) != nil)
	// all or nothing
	is.True(bag.RemoveTiles([]rune("AAZ")) != nil)
	is.Equal(bag.Remaining(), 96)

	for _, tile := range bag.Draw(96) {
		is.True(!strings.ContainsRune("QZJX", tile.Letter))
	}
	is.True(bag.IsEmpty())
}
