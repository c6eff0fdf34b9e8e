package game

import (
	"unicode"

	"github.com/domino14/wordduel/board"
	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/lexicon"
	"github.com/domino14/wordduel/tilemapping"
)

// SubmitResult describes an accepted move.
type SubmitResult struct {
	Words    []string
	Score    int
	GameOver bool
}

// PlaceTiles stages tiles for the player on turn. Previously staged tiles
// are cleared first. Letters are checked against the rack as a multiset; a
// lowercase letter is a blank standing in for that letter. A rejected
// placement leaves the board and rack untouched. Placement rule violations
// come back as a *board.PlacementError.
func (g *Game) PlaceTiles(playerID string, tiles []board.Placement) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkTurn(playerID); err != nil {
		return err
	}
	g.clearStaged()

	p := g.curPlayer()
	needed := make([]rune, len(tiles))
	placements := make([]board.Placement, len(tiles))
	for i, t := range tiles {
		if !unicode.IsLetter(t.Letter) || !g.ld.Has(unicode.ToUpper(t.Letter)) {
			return ErrUnknownLetter
		}
		needed[i] = tilemapping.RackLetter(t.Letter)
		placements[i] = board.Placement{
			Row:    t.Row,
			Col:    t.Col,
			Letter: t.Letter,
			Points: g.ld.Score(t.Letter),
		}
	}
	if !p.rack.ContainsAll(needed) {
		return ErrTilesNotOnRack
	}
	if err := g.board.Validate(placements); err != nil {
		return err
	}
	for _, pl := range placements {
		// Validate already rejected off-board squares.
		_ = g.board.PlaceTile(pl.Row, pl.Col, board.Cell{Letter: pl.Letter, Points: pl.Points, IsNew: true})
	}
	g.pending = placements
	g.logger.Debug().Str("player", playerID).Int("tiles", len(placements)).Msg("tiles-staged")
	return nil
}

// clearStaged takes staged tiles back off the board. Must hold g.mu.
func (g *Game) clearStaged() {
	for _, pl := range g.pending {
		if c, ok := g.board.CellAt(pl.Row, pl.Col); ok && c.IsNew {
			g.board.RemoveTile(pl.Row, pl.Col)
		}
	}
	g.pending = nil
}

// PendingTiles returns a copy of the staged placements.
func (g *Game) PendingTiles() []board.Placement {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]board.Placement(nil), g.pending...)
}

// SubmitWord commits the staged tiles. Every formed word must pass the
// lexicon; otherwise the staged tiles are cleared and an
// *InvalidWordsError names the offenders.
func (g *Game) SubmitWord(playerID string) (SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkTurn(playerID); err != nil {
		return SubmitResult{}, err
	}
	if len(g.pending) == 0 {
		return SubmitResult{}, ErrNoTilesPlaced
	}

	words := g.board.FormedWords(g.pending)
	if len(words) == 0 {
		g.clearStaged()
		return SubmitResult{}, ErrNoWordsFormed
	}
	wordStrs := board.WordStrings(words)
	if v := lexicon.ValidateWords(g.lexicon, wordStrs); !v.AllValid {
		g.clearStaged()
		g.logger.Info().Str("player", playerID).Strs("invalid", v.InvalidWords).Msg("words-rejected")
		return SubmitResult{}, &InvalidWordsError{Words: v.InvalidWords}
	}

	score := g.board.CalculateScore(words)
	g.board.CommitTiles()

	p := g.curPlayer()
	p.points += score
	move := &Move{
		PlayerID:   p.id,
		PlayerName: p.name,
		Words:      wordStrs,
		Tiles:      g.pending,
		Score:      score,
		Timestamp:  g.now(),
	}
	p.rack.TakeAll(move.rackLetters())
	move.drawn = tilemapping.Letters(g.bag.Draw(len(move.Tiles)))
	p.rack.Add(move.drawn...)

	g.history = append(g.history, move)
	g.pending = nil
	g.lastMoveOpen = true
	p.consecutivePasses = 0
	g.scorelessTurns = 0

	g.logger.Info().Str("player", p.id).Strs("words", wordStrs).Int("score", score).
		Int("total", p.points).Msg("word-submitted")

	res := SubmitResult{Words: wordStrs, Score: score}
	if g.bag.IsEmpty() && p.rack.Empty() {
		g.endGame(ReasonTilesExhausted, -1)
		res.GameOver = true
		return res, nil
	}
	g.switchTurn()
	return res, nil
}

// PassTurn gives up the turn. Four passes in a row across both players
// end the game.
func (g *Game) PassTurn(playerID string) (gameOver bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkTurn(playerID); err != nil {
		return false, err
	}
	g.clearStaged()
	p := g.curPlayer()
	p.consecutivePasses++
	g.scorelessTurns++
	g.lastMoveOpen = false
	g.logger.Debug().Str("player", p.id).Int("scoreless", g.scorelessTurns).Msg("passed")

	if g.scorelessTurns >= MaxScorelessTurns {
		g.endGame(ReasonBothPassed, -1)
		return true, nil
	}
	g.switchTurn()
	return false, nil
}

// switchTurn hands the turn and the running clock to the other player.
// Must hold g.mu.
func (g *Game) switchTurn() {
	g.stopClock(g.onturn)
	g.onturn = otherPlayer(g.onturn)
	g.startClock(g.onturn)
	p := g.curPlayer()
	g.emitToAll(events.TurnChanged, events.TurnChangedPayload{
		CurrentPlayerID:   p.id,
		CurrentPlayerName: p.name,
	})
}
