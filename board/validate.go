package board

import (
	"fmt"
)

const (
	ErrMsgNoTiles      = "No tiles placed"
	ErrMsgNotInLine    = "All tiles must be placed in the same row or column"
	ErrMsgGap          = "Tiles must be contiguous with no gaps"
	ErrMsgCenter       = "First move must cover the center square"
	ErrMsgNotConnected = "New tiles must connect to existing tiles on the board"
	errFmtOccupied     = "Square (%d, %d) is already occupied"
	errFmtOffBoard     = "Square (%d, %d) is off the board"
	errFmtPlacedTwice  = "Square (%d, %d) is placed more than once"
)

// PlacementError lists every rule a proposed placement broke, in rule
// order.
type PlacementError struct {
	Problems []string
}

func (e *PlacementError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid placement"
	}
	return e.Problems[0]
}

// ValidatePlacement checks the geometry of a move against the committed
// board and returns every problem found. An empty result means the
// placement is legal.
func (g *GameBoard) ValidatePlacement(tiles []Placement) []string {
	if len(tiles) == 0 {
		return []string{ErrMsgNoTiles}
	}

	var problems []string
	placed := make(map[Position]bool, len(tiles))
	for _, t := range tiles {
		if !g.posExists(t.Row, t.Col) {
			problems = append(problems, fmt.Sprintf(errFmtOffBoard, t.Row, t.Col))
			continue
		}
		if placed[t.Position()] {
			problems = append(problems, fmt.Sprintf(errFmtPlacedTwice, t.Row, t.Col))
		}
		placed[t.Position()] = true
	}
	if len(problems) > 0 {
		return problems
	}

	sameRow, sameCol := true, true
	for _, t := range tiles[1:] {
		if t.Row != tiles[0].Row {
			sameRow = false
		}
		if t.Col != tiles[0].Col {
			sameCol = false
		}
	}
	if !sameRow && !sameCol {
		problems = append(problems, ErrMsgNotInLine)
	}

	if sameRow || sameCol {
		if !g.contiguous(tiles, placed, sameRow) {
			problems = append(problems, ErrMsgGap)
		}
	}

	if !g.firstMoveMade {
		if !placed[Position{Row: CenterRow, Col: CenterCol}] {
			problems = append(problems, ErrMsgCenter)
		}
	} else if !g.checkConnection(tiles) {
		problems = append(problems, ErrMsgNotConnected)
	}

	for _, t := range tiles {
		if g.IsOccupied(t.Row, t.Col) {
			problems = append(problems, fmt.Sprintf(errFmtOccupied, t.Row, t.Col))
		}
	}
	return problems
}

// Validate is ValidatePlacement wrapped as an error.
func (g *GameBoard) Validate(tiles []Placement) error {
	if problems := g.ValidatePlacement(tiles); len(problems) > 0 {
		return &PlacementError{Problems: problems}
	}
	return nil
}

// contiguous checks every square between the outermost new tiles along
// the placement axis.
func (g *GameBoard) contiguous(tiles []Placement, placed map[Position]bool, horizontal bool) bool {
	lo, hi := tiles[0].Col, tiles[0].Col
	if !horizontal {
		lo, hi = tiles[0].Row, tiles[0].Row
	}
	for _, t := range tiles {
		v := t.Col
		if !horizontal {
			v = t.Row
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	for i := lo; i <= hi; i++ {
		pos := Position{Row: tiles[0].Row, Col: i}
		if !horizontal {
			pos = Position{Row: i, Col: tiles[0].Col}
		}
		if !placed[pos] && !g.IsOccupied(pos.Row, pos.Col) {
			return false
		}
	}
	return true
}

// checkConnection reports whether any new tile touches an occupied square.
func (g *GameBoard) checkConnection(tiles []Placement) bool {
	for _, t := range tiles {
		if g.IsOccupied(t.Row-1, t.Col) || g.IsOccupied(t.Row+1, t.Col) ||
			g.IsOccupied(t.Row, t.Col-1) || g.IsOccupied(t.Row, t.Col+1) {
			return true
		}
	}
	return false
}
