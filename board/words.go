package board

import (
	"sort"
	"strings"

	"github.com/domino14/wordduel/tilemapping"
)

// A WordTile is one letter of a discovered word.
type WordTile struct {
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	Letter rune `json:"letter"`
	Points int  `json:"points"`
	IsNew  bool `json:"isNew"`
}

// A Word is a run of two or more tiles formed by a move.
type Word struct {
	Word      string         `json:"word"`
	Row       int            `json:"row"`
	Col       int            `json:"col"`
	Direction BoardDirection `json:"direction"`
	Tiles     []WordTile     `json:"tiles"`
}

type cellSource interface {
	cellAt(row, col int) (Cell, bool)
}

func (g *GameBoard) cellAt(row, col int) (Cell, bool) {
	return g.CellAt(row, col)
}

// overlay reads a board as if the candidate tiles were already on it.
type overlay struct {
	g      *GameBoard
	placed map[Position]Placement
}

func (o overlay) cellAt(row, col int) (Cell, bool) {
	if p, ok := o.placed[Position{Row: row, Col: col}]; ok {
		return Cell{Letter: p.Letter, Points: p.Points, IsNew: true}, true
	}
	return o.g.CellAt(row, col)
}

func step(dir BoardDirection) (int, int) {
	if dir == HorizontalDirection {
		return 0, 1
	}
	return 1, 0
}

func extractWord(src cellSource, row, col int, dir BoardDirection) Word {
	dr, dc := step(dir)
	for {
		if _, ok := src.cellAt(row-dr, col-dc); !ok {
			break
		}
		row, col = row-dr, col-dc
	}
	w := Word{Row: row, Col: col, Direction: dir}
	var sb strings.Builder
	for {
		c, ok := src.cellAt(row, col)
		if !ok {
			break
		}
		sb.WriteRune(tilemapping.UserVisible(c.Letter))
		w.Tiles = append(w.Tiles, WordTile{
			Row: row, Col: col, Letter: c.Letter, Points: c.Points, IsNew: c.IsNew,
		})
		row, col = row+dr, col+dc
	}
	w.Word = sb.String()
	return w
}

// ExtractWord returns the full run of tiles through (row, col) in the
// given direction, walking back to where the word starts.
func (g *GameBoard) ExtractWord(row, col int, dir BoardDirection) Word {
	return extractWord(g, row, col, dir)
}

// FormedWords returns every word of two or more letters the placement
// would create. It reads the board without changing it.
func (g *GameBoard) FormedWords(tiles []Placement) []Word {
	if len(tiles) == 0 {
		return nil
	}
	src := overlay{g: g, placed: make(map[Position]Placement, len(tiles))}
	for _, t := range tiles {
		src.placed[t.Position()] = t
	}

	dir := HorizontalDirection
	for _, t := range tiles[1:] {
		if t.Row != tiles[0].Row {
			dir = VerticalDirection
			break
		}
	}

	sorted := make([]Placement, len(tiles))
	copy(sorted, tiles)
	sort.Slice(sorted, func(i, j int) bool {
		if dir == HorizontalDirection {
			return sorted[i].Col < sorted[j].Col
		}
		return sorted[i].Row < sorted[j].Row
	})

	type wordKey struct {
		pos Position
		dir BoardDirection
	}
	seen := map[wordKey]bool{}
	var words []Word
	add := func(w Word) {
		k := wordKey{Position{Row: w.Row, Col: w.Col}, w.Direction}
		if len(w.Tiles) < 2 || seen[k] {
			return
		}
		seen[k] = true
		words = append(words, w)
	}

	add(extractWord(src, sorted[0].Row, sorted[0].Col, dir))
	for _, t := range sorted {
		add(extractWord(src, t.Row, t.Col, dir.Perpendicular()))
	}
	return words
}

// WordStrings returns just the spelled words.
func WordStrings(words []Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Word
	}
	return out
}
