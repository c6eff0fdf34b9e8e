package tilemapping

import (
	"fmt"

	"lukechampine.com/frand"
)

// Randomizer is the source of randomness for shuffling. *frand.RNG
// satisfies it; tests pass a seeded one.
type Randomizer interface {
	Intn(n int) int
}

type defaultRandomizer struct{}

func (defaultRandomizer) Intn(n int) int { return frand.Intn(n) }

// A Bag is the bag o'tiles!
type Bag struct {
	tiles      []Tile
	ld         *LetterDistribution
	randomizer Randomizer
}

// NewBag creates a full, shuffled bag. A nil randomizer uses a
// cryptographically seeded frand source.
func NewBag(ld *LetterDistribution, rnd Randomizer) *Bag {
	if rnd == nil {
		rnd = defaultRandomizer{}
	}
	b := &Bag{
		tiles:      ld.Tiles(),
		ld:         ld,
		randomizer: rnd,
	}
	b.Shuffle()
	return b
}

// Shuffle shuffles the bag with a Fisher-Yates pass.
func (b *Bag) Shuffle() {
	for i := len(b.tiles) - 1; i > 0; i-- {
		j := b.randomizer.Intn(i + 1)
		b.tiles[i], b.tiles[j] = b.tiles[j], b.tiles[i]
	}
}

// Draw removes and returns at most n tiles. It can draw fewer if there
// are fewer tiles than n, and even draw no tiles at all :o
func (b *Bag) Draw(n int) []Tile {
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	if n <= 0 {
		return nil
	}
	cut := len(b.tiles) - n
	drawn := make([]Tile, n)
	copy(drawn, b.tiles[cut:])
	b.tiles = b.tiles[:cut]
	return drawn
}

// Return puts tiles back in the bag and reshuffles.
func (b *Bag) Return(tiles []Tile) {
	b.tiles = append(b.tiles, tiles...)
	b.Shuffle()
}

// ReturnLetters puts rack letters back in the bag and reshuffles.
func (b *Bag) ReturnLetters(letters []rune) {
	tiles := make([]Tile, len(letters))
	for i, l := range letters {
		tiles[i] = b.ld.Tile(l)
	}
	b.Return(tiles)
}

// RemoveTiles takes specific letters out of the bag, for setting up a
// known rack. Nothing is removed unless every letter is present.
func (b *Bag) RemoveTiles(letters []rune) error {
	if !b.hasRack(letters) {
		return fmt.Errorf("bag does not hold all of %s", string(letters))
	}
	for _, l := range letters {
		b.remove(l)
	}
	return nil
}

func (b *Bag) hasRack(letters []rune) bool {
	have := map[rune]int{}
	for _, t := range b.tiles {
		have[t.Letter]++
	}
	for _, l := range letters {
		have[l]--
		if have[l] < 0 {
			return false
		}
	}
	return true
}

func (b *Bag) remove(l rune) {
	for i, t := range b.tiles {
		if t.Letter == l {
			b.tiles[i] = b.tiles[len(b.tiles)-1]
			b.tiles = b.tiles[:len(b.tiles)-1]
			return
		}
	}
}

func (b *Bag) Remaining() int {
	return len(b.tiles)
}

func (b *Bag) IsEmpty() bool {
	return len(b.tiles) == 0
}

func (b *Bag) LetterDistribution() *LetterDistribution {
	return b.ld
}
