package tilemapping

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// BlankLetter is how an undesignated blank is held on a rack or in the bag.
const BlankLetter = '?'

//go:embed english.csv
var englishCSV []byte

// A Tile is a single letter tile with its point value. Blanks carry
// BlankLetter while in the bag or on a rack.
type Tile struct {
	Letter rune
	Points int
}

func (t Tile) String() string {
	return string(t.Letter)
}

// LetterDistribution encodes the tile distribution for the relevant game.
type LetterDistribution struct {
	Name string

	letters    []rune
	counts     map[rune]int
	scores     map[rune]int
	numLetters int
}

// ScanLetterDistribution reads a distribution in the format
// letter,quantity,value (one letter per line).
func ScanLetterDistribution(data io.Reader) (*LetterDistribution, error) {
	r := csv.NewReader(data)
	r.FieldsPerRecord = 3
	ld := &LetterDistribution{
		counts: map[rune]int{},
		scores: map[rune]int{},
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		letter, size := utf8.DecodeRuneInString(record[0])
		if size != len(record[0]) {
			return nil, fmt.Errorf("letter %q must be a single character", record[0])
		}
		n, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, err
		}
		p, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, err
		}
		if _, ok := ld.counts[letter]; ok {
			return nil, fmt.Errorf("letter %c appears twice", letter)
		}
		ld.letters = append(ld.letters, letter)
		ld.counts[letter] = n
		ld.scores[letter] = p
		ld.numLetters += n
	}
	if ld.numLetters == 0 {
		return nil, errors.New("empty letter distribution")
	}
	return ld, nil
}

var english *LetterDistribution

func init() {
	var err error
	english, err = ScanLetterDistribution(bytes.NewReader(englishCSV))
	if err != nil {
		panic(err)
	}
	english.Name = "english"
}

// EnglishLetterDistribution returns the standard 100-tile English
// distribution. The returned value is shared and must not be modified.
func EnglishLetterDistribution() *LetterDistribution {
	return english
}

// Score returns the point value of a letter as it appears on a rack or on
// the board. Lowercase letters are designated blanks and score nothing.
func (ld *LetterDistribution) Score(letter rune) int {
	if IsBlanked(letter) {
		return 0
	}
	return ld.scores[letter]
}

// Count returns how many tiles of this letter the full bag holds.
func (ld *LetterDistribution) Count(letter rune) int {
	return ld.counts[letter]
}

// Letters returns the distinct letters in distribution order.
func (ld *LetterDistribution) Letters() []rune {
	out := make([]rune, len(ld.letters))
	copy(out, ld.letters)
	return out
}

// NumTotalLetters is the size of a full bag.
func (ld *LetterDistribution) NumTotalLetters() int {
	return ld.numLetters
}

// Has reports whether the letter belongs to this distribution at all.
func (ld *LetterDistribution) Has(letter rune) bool {
	_, ok := ld.counts[letter]
	return ok
}

// Tile returns the tile for a rack letter.
func (ld *LetterDistribution) Tile(letter rune) Tile {
	return Tile{Letter: letter, Points: ld.Score(letter)}
}

// Tiles expands the distribution into the full, unshuffled tile set.
func (ld *LetterDistribution) Tiles() []Tile {
	tiles := make([]Tile, 0, ld.numLetters)
	for _, l := range ld.letters {
		for i := 0; i < ld.counts[l]; i++ {
			tiles = append(tiles, ld.Tile(l))
		}
	}
	return tiles
}

// WordScore is the face value of a word, without bonuses.
func (ld *LetterDistribution) WordScore(word string) int {
	score := 0
	for _, c := range word {
		score += ld.Score(c)
	}
	return score
}

// IsBlanked reports whether a placed letter is a blank standing in for a
// real letter (written in lowercase).
func IsBlanked(letter rune) bool {
	return letter >= 'a' && letter <= 'z'
}

// RackLetter maps a placed letter back to the rack letter it consumes.
func RackLetter(placed rune) rune {
	if IsBlanked(placed) {
		return BlankLetter
	}
	return placed
}

// UserVisible returns the letter a placed tile spells in a word.
func UserVisible(placed rune) rune {
	return unicode.ToUpper(placed)
}

// Letters returns just the letters of a tile slice.
func Letters(tiles []Tile) []rune {
	out := make([]rune, len(tiles))
	for i, t := range tiles {
		out[i] = t.Letter
	}
	return out
}
