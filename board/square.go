package board

// A BonusSquare is a bonus square (duh)
type BonusSquare rune

const (
	NoBonus BonusSquare = ' '
	// Bonus3WS is a triple word score
	Bonus3WS BonusSquare = '='
	// Bonus3LS is a triple letter score
	Bonus3LS BonusSquare = '"'
	// Bonus2LS is a double letter score
	Bonus2LS BonusSquare = '\''
	// Bonus2WS is a double word score
	Bonus2WS BonusSquare = '-'
)

func (b BonusSquare) String() string {
	switch b {
	case Bonus3WS:
		return "triple-word"
	case Bonus2WS:
		return "double-word"
	case Bonus3LS:
		return "triple-letter"
	case Bonus2LS:
		return "double-letter"
	}
	return "none"
}

// LetterMultiplier is the factor applied to a new tile's own points.
func (b BonusSquare) LetterMultiplier() int {
	switch b {
	case Bonus3LS:
		return 3
	case Bonus2LS:
		return 2
	}
	return 1
}

// WordMultiplier is the factor applied to a whole word covering a new tile
// on this square.
func (b BonusSquare) WordMultiplier() int {
	switch b {
	case Bonus3WS:
		return 3
	case Bonus2WS:
		return 2
	}
	return 1
}

// A Cell is the tile sitting on a square. Letter is lowercase for a blank
// standing in for that letter.
type Cell struct {
	Letter rune `json:"letter"`
	Points int  `json:"points"`
	IsNew  bool `json:"isNew"`
}

// A Square is a single square in a game board. It holds its bonus marking
// and the tile on it, if any.
type Square struct {
	bonus BonusSquare
	tile  *Cell
}

func (s *Square) IsEmpty() bool {
	return s.tile == nil
}

func (s *Square) Bonus() BonusSquare {
	return s.bonus
}

func (s Square) DisplayString() string {
	if s.tile != nil {
		return string(s.tile.Letter)
	}
	if s.bonus != NoBonus && s.bonus != 0 {
		return string(s.bonus)
	}
	return "."
}
