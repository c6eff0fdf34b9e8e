package board

import (
	"fmt"
)

type BoardDirection uint8

func (bd BoardDirection) String() string {
	if bd == HorizontalDirection {
		return "horizontal"
	} else if bd == VerticalDirection {
		return "vertical"
	}
	return "none"
}

const (
	HorizontalDirection BoardDirection = iota
	VerticalDirection
)

// Perpendicular returns the other direction.
func (bd BoardDirection) Perpendicular() BoardDirection {
	if bd == HorizontalDirection {
		return VerticalDirection
	}
	return HorizontalDirection
}

// Position is a (row, col) square coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// A Placement is one new tile put down during a move.
type Placement struct {
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	Letter rune `json:"letter"`
	Points int  `json:"points"`
}

func (p Placement) Position() Position {
	return Position{Row: p.Row, Col: p.Col}
}

// A GameBoard is the main board structure. It contains all of the Squares,
// with bonuses or filled letters.
type GameBoard struct {
	squares       [][]*Square
	firstMoveMade bool
}

// MakeBoard creates a board from a description string.
func MakeBoard(desc []string) *GameBoard {
	rows := [][]*Square{}
	for _, s := range desc {
		row := []*Square{}
		for _, c := range s {
			row = append(row, &Square{bonus: BonusSquare(c)})
		}
		rows = append(rows, row)
	}
	return &GameBoard{squares: rows}
}

// NewStandardBoard returns an empty board with the standard layout.
func NewStandardBoard() *GameBoard {
	return MakeBoard(CrosswordGameBoard)
}

// Dim is the dimension of the board. It assumes the board is square.
func (g *GameBoard) Dim() int {
	return len(g.squares)
}

func (g *GameBoard) posExists(row int, col int) bool {
	return row >= 0 && row < g.Dim() && col >= 0 && col < len(g.squares[row])
}

// GetBonus returns the bonus at a square, or NoBonus for squares without
// one or off the board.
func (g *GameBoard) GetBonus(row int, col int) BonusSquare {
	if !g.posExists(row, col) {
		return NoBonus
	}
	b := g.squares[row][col].bonus
	if b == 0 {
		return NoBonus
	}
	return b
}

func (g *GameBoard) IsOccupied(row int, col int) bool {
	return g.posExists(row, col) && !g.squares[row][col].IsEmpty()
}

// CellAt returns a copy of the tile at the square.
func (g *GameBoard) CellAt(row int, col int) (Cell, bool) {
	if !g.IsOccupied(row, col) {
		return Cell{}, false
	}
	return *g.squares[row][col].tile, true
}

// PlaceTile puts a tile on a square, replacing whatever was there. It is
// used for both committed and staged tiles.
func (g *GameBoard) PlaceTile(row int, col int, c Cell) error {
	if !g.posExists(row, col) {
		return fmt.Errorf("square (%d, %d) is off the board", row, col)
	}
	g.squares[row][col].tile = &c
	return nil
}

// RemoveTile empties a square and returns what was there.
func (g *GameBoard) RemoveTile(row int, col int) (Cell, bool) {
	c, ok := g.CellAt(row, col)
	if ok {
		g.squares[row][col].tile = nil
	}
	return c, ok
}

// CommitTiles makes every tile on the board permanent.
func (g *GameBoard) CommitTiles() {
	for _, row := range g.squares {
		for _, sq := range row {
			if sq.tile != nil {
				sq.tile.IsNew = false
			}
		}
	}
	g.firstMoveMade = true
}

func (g *GameBoard) FirstMoveMade() bool {
	return g.firstMoveMade
}

// SetFirstMoveMade overrides the first-move flag; a board emptied by a
// successful challenge goes back to requiring the center square.
func (g *GameBoard) SetFirstMoveMade(made bool) {
	g.firstMoveMade = made
}

func (g *GameBoard) IsEmpty() bool {
	return g.TileCount() == 0
}

// TileCount returns the number of occupied squares.
func (g *GameBoard) TileCount() int {
	n := 0
	for _, row := range g.squares {
		for _, sq := range row {
			if sq.tile != nil {
				n++
			}
		}
	}
	return n
}

// Clear removes every tile.
func (g *GameBoard) Clear() {
	for _, row := range g.squares {
		for _, sq := range row {
			sq.tile = nil
		}
	}
	g.firstMoveMade = false
}

// Copy returns a deep copy of the board.
func (g *GameBoard) Copy() *GameBoard {
	n := &GameBoard{
		squares:       make([][]*Square, len(g.squares)),
		firstMoveMade: g.firstMoveMade,
	}
	for i, row := range g.squares {
		n.squares[i] = make([]*Square, len(row))
		for j, sq := range row {
			cp := &Square{bonus: sq.bonus}
			if sq.tile != nil {
				t := *sq.tile
				cp.tile = &t
			}
			n.squares[i][j] = cp
		}
	}
	return n
}

// Snapshot returns the board contents as fresh values; nil marks an empty
// square.
func (g *GameBoard) Snapshot() [][]*Cell {
	out := make([][]*Cell, len(g.squares))
	for i, row := range g.squares {
		out[i] = make([]*Cell, len(row))
		for j, sq := range row {
			if sq.tile != nil {
				c := *sq.tile
				out[i][j] = &c
			}
		}
	}
	return out
}

// NewTiles returns the positions of every uncommitted tile.
func (g *GameBoard) NewTiles() []Position {
	var ps []Position
	for i, row := range g.squares {
		for j, sq := range row {
			if sq.tile != nil && sq.tile.IsNew {
				ps = append(ps, Position{Row: i, Col: j})
			}
		}
	}
	return ps
}
