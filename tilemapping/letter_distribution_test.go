package tilemapping

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestLetterDistributionScores(t *testing.T) {
	is := is.New(t)
	ld := EnglishLetterDistribution()

	is.Equal(ld.Score('?'), 0)
	is.Equal(ld.Score('q'), 0)
	is.Equal(ld.Score('Y'), 4)
	is.Equal(ld.Score('Z'), 10)
	is.Equal(ld.Score('H'), 4)
	is.Equal(ld.Score('A'), 1)
}

func TestLetterDistributionTotals(t *testing.T) {
	is := is.New(t)
	ld := EnglishLetterDistribution()

	is.Equal(ld.NumTotalLetters(), 100)
	is.Equal(len(ld.Tiles()), 100)
	is.Equal(ld.Count('?'), 2)
	is.Equal(ld.Count('E'), 12)
	is.Equal(len(ld.Letters()), 27)
}

func TestLetterDistributionWordScore(t *testing.T) {
	is := is.New(t)
	ld := EnglishLetterDistribution()
	is.Equal(ld.WordScore("CoOKIE"), 11)
	is.Equal(ld.WordScore("QUIZ"), 22)
}

func TestScanLetterDistributionErrors(t *testing.T) {
	is := is.New(t)
	_, err := ScanLetterDistribution(strings.NewReader(""))
	is.True(err != nil)
	_, err = ScanLetterDistribution(strings.NewReader("A,1,1\nA,2,2\n"))
	is.True(err != nil)
	_, err = ScanLetterDistribution(strings.NewReader("AB,1,1\n"))
	is.True(err != nil)
	_, err = ScanLetterDistribution(strings.NewReader("A,x,1\n"))
	is.True(err != nil)
}

func TestBlankHelpers(t *testing.T) {
	is := is.New(t)
	is.True(IsBlanked('e'))
	is.True(!IsBlanked('E'))
	is.True(!IsBlanked('?'))
	is.Equal(RackLetter('e'), BlankLetter)
	is.Equal(RackLetter('E'), 'E')
	is.Equal(UserVisible('e'), 'E')
}
