package board

import (
	"fmt"
	"strings"

	"github.com/domino14/wordduel/tilemapping"
)

const coordLabels = "0123456789ABCDE"

func label(i int) string {
	if i < len(coordLabels) {
		return string(coordLabels[i])
	}
	return "?"
}

// ToDisplayText renders the board as plain text. Empty squares show their
// bonus glyph, or a dot.
func (g *GameBoard) ToDisplayText() string {
	var str strings.Builder
	n := g.Dim()
	str.WriteString("   ")
	for i := 0; i < n; i++ {
		str.WriteString(label(i) + " ")
	}
	str.WriteString("\n   " + strings.Repeat("-", n*2) + "\n")
	for i := 0; i < n; i++ {
		str.WriteString(fmt.Sprintf("%2s|", label(i)))
		for j := 0; j < len(g.squares[i]); j++ {
			str.WriteString(g.squares[i][j].DisplayString() + " ")
		}
		str.WriteString("|\n")
	}
	str.WriteString("   " + strings.Repeat("-", n*2) + "\n")
	return str.String()
}

func (g *GameBoard) String() string {
	return g.ToDisplayText()
}

// SetFromPlaintext lays committed tiles on the board from rows of text,
// one character per square; '.' and ' ' are empty. Lowercase letters are
// blanks. It returns the rack letters the tiles came from so that the
// caller can reconcile the bag.
func (g *GameBoard) SetFromPlaintext(rows []string, ld *tilemapping.LetterDistribution) ([]rune, error) {
	if len(rows) > g.Dim() {
		return nil, fmt.Errorf("too many rows: %d", len(rows))
	}
	g.Clear()
	var played []rune
	for i, row := range rows {
		for j, ch := range []rune(row) {
			if ch == '.' || ch == ' ' {
				continue
			}
			rl := tilemapping.RackLetter(ch)
			if !ld.Has(rl) {
				return nil, fmt.Errorf("unknown letter %c at (%d, %d)", ch, i, j)
			}
			if err := g.PlaceTile(i, j, Cell{Letter: ch, Points: ld.Score(ch)}); err != nil {
				return nil, err
			}
			played = append(played, rl)
		}
	}
	if len(played) > 0 {
		g.firstMoveMade = true
	}
	return played, nil
}
