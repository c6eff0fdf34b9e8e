package game

import (
	"fmt"
	"strings"

	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/lexicon"
)

// ChallengeResult reports how a challenge was adjudicated. Success means
// the challenged move was phony and has been taken back; Valid means the
// words stood.
type ChallengeResult struct {
	Success      bool
	Valid        bool
	Message      string
	InvalidWords []string
	ScoreChanges []events.ScoreChange
}

// Payload converts the result for the challenge-result event.
func (r ChallengeResult) Payload() events.ChallengeResultPayload {
	return events.ChallengeResultPayload{
		Success:      r.Success,
		Valid:        r.Valid,
		Message:      r.Message,
		ScoreChanges: r.ScoreChanges,
	}
}

// HandleChallenge contests the last move. Only the player the turn just
// passed to may challenge, and only before doing anything else. The clock
// is paused while the words are re-checked.
func (g *Game) HandleChallenge(challengerID string) (ChallengeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusActive || g.closed {
		return ChallengeResult{}, ErrGameNotActive
	}
	idx := g.playerIndex(challengerID)
	if idx < 0 {
		return ChallengeResult{}, ErrUnknownPlayer
	}
	last := g.lastMove()
	if last == nil {
		return ChallengeResult{}, ErrNoMoveToChallenge
	}
	if last.PlayerID == challengerID {
		return ChallengeResult{}, ErrOwnMove
	}
	if idx != g.onturn {
		return ChallengeResult{}, ErrNotYourTurn
	}
	if !g.lastMoveOpen {
		return ChallengeResult{}, ErrNotChallengeable
	}

	g.stopClock(g.onturn)
	g.clearStaged()
	g.lastMoveOpen = false

	challenger := g.players[idx]
	challenged := g.players[otherPlayer(idx)]
	v := lexicon.ValidateWords(g.lexicon, last.Words)

	var res ChallengeResult
	if v.AllValid {
		challenger.points = max(0, challenger.points-ChallengePenalty)
		res = ChallengeResult{
			Valid: true,
			Message: fmt.Sprintf("%q is valid! %s loses %d points.",
				strings.Join(last.Words, ", "), challenger.name, ChallengePenalty),
			ScoreChanges: []events.ScoreChange{{PlayerID: challenger.id, NewScore: challenger.points}},
		}
	} else {
		g.takeBack(last, challenged)
		res = ChallengeResult{
			Success: true,
			Message: fmt.Sprintf("%q is not valid. %s loses %d points and their turn.",
				strings.Join(v.InvalidWords, ", "), challenged.name, last.Score),
			InvalidWords: v.InvalidWords,
			ScoreChanges: []events.ScoreChange{{PlayerID: challenged.id, NewScore: challenged.points}},
		}
	}
	// The turn belongs to the challenger either way.
	g.onturn = idx
	g.startClock(g.onturn)

	g.logger.Info().Str("challenger", challenger.id).Bool("success", res.Success).
		Strs("words", last.Words).Msg("challenge")
	return res, nil
}

// takeBack undoes a phony move: its tiles leave the board, the replacement
// draw goes back in the bag, the played letters go back on the rack and the
// score is deducted. Must hold g.mu.
func (g *Game) takeBack(m *Move, p *playerState) {
	for _, t := range m.Tiles {
		g.board.RemoveTile(t.Row, t.Col)
	}
	if g.board.IsEmpty() {
		g.board.SetFirstMoveMade(false)
	}
	for _, l := range m.drawn {
		p.rack.Take(l)
	}
	g.bag.ReturnLetters(m.drawn)
	p.rack.Add(m.rackLetters()...)
	p.points = max(0, p.points-m.Score)
	g.history = g.history[:len(g.history)-1]
}
