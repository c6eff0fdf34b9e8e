package tilemapping

import (
	"sort"
	"strings"
)

// Rack is a multiset of the letters a player holds. Order does not matter.
type Rack struct {
	counts     map[rune]int
	numLetters int
}

// NewRack creates a rack holding the given letters.
func NewRack(letters ...rune) *Rack {
	r := &Rack{counts: map[rune]int{}}
	r.Add(letters...)
	return r
}

// RackFromString creates a Rack from a string such as "AEINST?".
func RackFromString(rack string) *Rack {
	return NewRack([]rune(rack)...)
}

// String returns a user-visible version of this rack.
func (r *Rack) String() string {
	return string(r.Letters())
}

// Copy returns a deep copy of this rack
func (r *Rack) Copy() *Rack {
	n := &Rack{counts: make(map[rune]int, len(r.counts)), numLetters: r.numLetters}
	for k, v := range r.counts {
		n.counts[k] = v
	}
	return n
}

func (r *Rack) Clear() {
	r.counts = map[rune]int{}
	r.numLetters = 0
}

func (r *Rack) Add(letters ...rune) {
	for _, l := range letters {
		r.counts[l]++
		r.numLetters++
	}
}

// Take removes one occurrence of the letter. It returns false, leaving the
// rack untouched, if the letter is not there.
func (r *Rack) Take(letter rune) bool {
	if r.counts[letter] == 0 {
		return false
	}
	r.counts[letter]--
	if r.counts[letter] == 0 {
		delete(r.counts, letter)
	}
	r.numLetters--
	return true
}

func (r *Rack) Has(letter rune) bool {
	return r.counts[letter] > 0
}

func (r *Rack) CountOf(letter rune) int {
	return r.counts[letter]
}

// ContainsAll reports whether every letter is on the rack, counting
// duplicates: "EE" needs two Es.
func (r *Rack) ContainsAll(letters []rune) bool {
	need := map[rune]int{}
	for _, l := range letters {
		need[l]++
	}
	for l, n := range need {
		if r.counts[l] < n {
			return false
		}
	}
	return true
}

// TakeAll removes every letter, or none of them if the rack doesn't hold
// them all.
func (r *Rack) TakeAll(letters []rune) bool {
	if !r.ContainsAll(letters) {
		return false
	}
	for _, l := range letters {
		r.Take(l)
	}
	return true
}

// Letters returns the rack's tiles, alphabetized with blanks last.
func (r *Rack) Letters() []rune {
	letters := make([]rune, 0, r.numLetters)
	for l, n := range r.counts {
		for i := 0; i < n; i++ {
			letters = append(letters, l)
		}
	}
	sort.Slice(letters, func(i, j int) bool {
		if letters[i] == BlankLetter || letters[j] == BlankLetter {
			return letters[j] == BlankLetter && letters[i] != BlankLetter
		}
		return letters[i] < letters[j]
	})
	return letters
}

// ScoreOn returns the total score of the tiles on this rack.
func (r *Rack) ScoreOn(ld *LetterDistribution) int {
	score := 0
	for l, n := range r.counts {
		score += ld.Score(l) * n
	}
	return score
}

// NumTiles returns the current number of tiles on this rack.
func (r *Rack) NumTiles() int {
	return r.numLetters
}

func (r *Rack) Empty() bool {
	return r.numLetters == 0
}

// Equals compares racks as multisets.
func (r *Rack) Equals(other *Rack) bool {
	return r.numLetters == other.numLetters && r.ContainsAll(other.Letters())
}

// Placeholder returns a same-length string of hidden tiles.
func (r *Rack) Placeholder() string {
	return strings.Repeat("?", r.numLetters)
}
