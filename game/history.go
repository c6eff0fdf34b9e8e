package game

import (
	"time"

	"github.com/domino14/wordduel/board"
	"github.com/domino14/wordduel/tilemapping"
)

// A Move is one accepted word submission.
type Move struct {
	PlayerID   string            `json:"playerId"`
	PlayerName string            `json:"playerName"`
	Words      []string          `json:"words"`
	Tiles      []board.Placement `json:"tiles"`
	Score      int               `json:"score"`
	Timestamp  time.Time         `json:"timestamp"`

	// drawn are the replacement tiles the mover took from the bag.
	drawn []rune
}

// Copy returns a move sharing no slices with m.
func (m *Move) Copy() *Move {
	cp := *m
	cp.Words = append([]string(nil), m.Words...)
	cp.Tiles = append([]board.Placement(nil), m.Tiles...)
	cp.drawn = append([]rune(nil), m.drawn...)
	return &cp
}

// rackLetters are the rack letters the move used up.
func (m *Move) rackLetters() []rune {
	out := make([]rune, len(m.Tiles))
	for i, t := range m.Tiles {
		out[i] = tilemapping.RackLetter(t.Letter)
	}
	return out
}

// History returns copies of the moves played so far.
func (g *Game) History() []*Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Move, len(g.history))
	for i, m := range g.history {
		out[i] = m.Copy()
	}
	return out
}

func (g *Game) lastMove() *Move {
	if len(g.history) == 0 {
		return nil
	}
	return g.history[len(g.history)-1]
}
