package board

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wordduel/tilemapping"
)

func setupBoard(t *testing.T, rows VsWho) *GameBoard {
	t.Helper()
	b := NewStandardBoard()
	if rows != nil {
		_, err := b.SetFromPlaintext(rows, tilemapping.EnglishLetterDistribution())
		if err != nil {
			t.Fatal(err)
		}
	}
	return b
}

func TestStandardBonuses(t *testing.T) {
	is := is.New(t)
	b := NewStandardBoard()
	is.Equal(b.Dim(), BoardDim)
	is.Equal(b.GetBonus(CenterRow, CenterCol), Bonus2WS)
	is.Equal(b.GetBonus(0, 0), Bonus3WS)
	is.Equal(b.GetBonus(14, 7), Bonus3WS)
	is.Equal(b.GetBonus(1, 5), Bonus3LS)
	is.Equal(b.GetBonus(0, 3), Bonus2LS)
	is.Equal(b.GetBonus(8, 8), Bonus2LS)
	is.Equal(b.GetBonus(0, 1), NoBonus)
	is.Equal(b.GetBonus(-1, 20), NoBonus)

	counts := map[BonusSquare]int{}
	for i := 0; i < BoardDim; i++ {
		for j := 0; j < BoardDim; j++ {
			counts[b.GetBonus(i, j)]++
			// the layout is symmetric both ways
			is.Equal(b.GetBonus(i, j), b.GetBonus(j, i))
			is.Equal(b.GetBonus(i, j), b.GetBonus(14-i, 14-j))
		}
	}
	is.Equal(counts[Bonus3WS], 8)
	is.Equal(counts[Bonus2WS], 17)
	is.Equal(counts[Bonus3LS], 12)
	is.Equal(counts[Bonus2LS], 24)
}

func TestPlaceRemoveCommit(t *testing.T) {
	is := is.New(t)
	b := NewStandardBoard()
	is.True(b.IsEmpty())
	is.NoErr(b.PlaceTile(7, 7, Cell{Letter: 'A', Points: 1, IsNew: true}))
	is.True(b.IsOccupied(7, 7))
	is.Equal(len(b.NewTiles()), 1)
	is.True(b.PlaceTile(15, 0, Cell{Letter: 'A'}) != nil)

	b.CommitTiles()
	is.True(b.FirstMoveMade())
	c, ok := b.CellAt(7, 7)
	is.True(ok)
	is.True(!c.IsNew)
	is.Equal(len(b.NewTiles()), 0)

	removed, ok := b.RemoveTile(7, 7)
	is.True(ok)
	is.Equal(removed.Letter, 'A')
	is.True(b.IsEmpty())
	_, ok = b.RemoveTile(7, 7)
	is.True(!ok)
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	is := is.New(t)
	b := setupBoard(t, VsCat)
	snap := b.Snapshot()
	is.Equal(snap[7][7].Letter, 'C')
	is.True(snap[0][0] == nil)
	snap[7][7].Letter = 'X'
	c, _ := b.CellAt(7, 7)
	is.Equal(c.Letter, 'C')
}

func TestCopy(t *testing.T) {
	is := is.New(t)
	b := setupBoard(t, VsCat)
	cp := b.Copy()
	cp.RemoveTile(7, 7)
	is.True(b.IsOccupied(7, 7))
	is.Equal(cp.TileCount(), 2)
	is.True(cp.FirstMoveMade())
}

func TestSetFromPlaintext(t *testing.T) {
	is := is.New(t)
	b := NewStandardBoard()
	played, err := b.SetFromPlaintext([]string{".......Ca"}, tilemapping.EnglishLetterDistribution())
	is.NoErr(err)
	is.Equal(string(played), "C?")
	c, _ := b.CellAt(0, 8)
	is.Equal(c.Points, 0)

	_, err = b.SetFromPlaintext([]string{"1"}, tilemapping.EnglishLetterDistribution())
	is.True(err != nil)
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	b := setupBoard(t, VsCat)
	lines := strings.Split(b.ToDisplayText(), "\n")
	is.Equal(lines[0], "   0 1 2 3 4 5 6 7 8 9 A B C D E ")
	is.Equal(lines[9], " 7|= . . ' . . . C A T . ' . . = |")
}
