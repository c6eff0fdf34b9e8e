package board

import (
	"github.com/samber/lo"
)

const (
	// BingoBonus is awarded once when a move uses a full rack.
	BingoBonus = 50
	// BingoTiles is the number of new tiles that earns the bonus.
	BingoTiles = 7
)

// WordScore scores one word. Bonus squares count only under new tiles.
func (g *GameBoard) WordScore(w Word) int {
	total, wordMult := 0, 1
	for _, t := range w.Tiles {
		pts := t.Points
		if t.IsNew {
			bonus := g.GetBonus(t.Row, t.Col)
			pts *= bonus.LetterMultiplier()
			wordMult *= bonus.WordMultiplier()
		}
		total += pts
	}
	return total * wordMult
}

// CalculateScore totals every word of a move and adds the bingo bonus when
// exactly seven distinct new tiles were played.
func (g *GameBoard) CalculateScore(words []Word) int {
	score := lo.SumBy(words, g.WordScore)
	newTiles := lo.Uniq(lo.FlatMap(words, func(w Word, _ int) []Position {
		return lo.FilterMap(w.Tiles, func(t WordTile, _ int) (Position, bool) {
			return Position{Row: t.Row, Col: t.Col}, t.IsNew
		})
	}))
	if len(newTiles) == BingoTiles {
		score += BingoBonus
	}
	return score
}
