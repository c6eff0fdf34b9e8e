package game

import (
	"fmt"
	"strings"

	"github.com/domino14/wordduel/board"
)

// PlayerView is one player's seat as seen by a particular viewer.
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`

	// Rack is a row of ? placeholders for the opponent's seat.
	Rack          string `json:"rack"`
	RackCount     int    `json:"rackCount"`
	TimeRemaining int64  `json:"timeRemaining"`
	IsActive      bool   `json:"isActive"`
}

// State is a personalized snapshot of a game. Nothing in it aliases the
// game's own data.
type State struct {
	GameID          string          `json:"gameId"`
	Status          Status          `json:"status"`
	Players         []PlayerView    `json:"players"`
	Board           [][]*board.Cell `json:"board"`
	CurrentPlayerID string          `json:"currentPlayerId,omitempty"`
	TilesRemaining  int             `json:"tilesRemaining"`
	LastMove        *Move           `json:"lastMove,omitempty"`
	EndReason       EndReason       `json:"endReason,omitempty"`
	WinnerID        string          `json:"winnerId,omitempty"`
}

// GetState returns the game as forPlayerID may see it: their own rack in
// full, the opponent's as a count. The opponent's staged tiles are left off
// the board.
func (g *Game) GetState(forPlayerID string) *State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateFor(forPlayerID)
}

// stateFor builds the snapshot. Must hold g.mu.
func (g *Game) stateFor(viewer string) *State {
	now := g.now()
	st := &State{
		GameID:         g.id,
		Status:         g.status,
		Board:          g.board.Snapshot(),
		TilesRemaining: g.bag.Remaining(),
		EndReason:      g.endReason,
	}
	for i, p := range g.players {
		pv := PlayerView{
			ID:            p.id,
			Name:          p.name,
			Score:         p.points,
			RackCount:     p.rack.NumTiles(),
			TimeRemaining: p.remainingAt(now).Milliseconds(),
			IsActive:      g.status == StatusActive && i == g.onturn,
		}
		if p.id == viewer {
			pv.Rack = p.rack.String()
		} else {
			pv.Rack = p.rack.Placeholder()
		}
		st.Players = append(st.Players, pv)
	}
	if g.status == StatusActive {
		st.CurrentPlayerID = g.curPlayer().id
		if g.curPlayer().id != viewer {
			for _, pl := range g.pending {
				st.Board[pl.Row][pl.Col] = nil
			}
		}
	}
	if m := g.lastMove(); m != nil {
		st.LastMove = m.Copy()
	}
	if g.status == StatusFinished && g.winner >= 0 {
		st.WinnerID = g.players[g.winner].id
	}
	return st
}

// DisplayFor renders the board and scoreboard for viewer, hiding the
// opponent's rack and staged tiles.
func (g *Game) DisplayFor(viewer string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	bd := g.board
	if len(g.players) > 0 && g.curPlayer().id != viewer && len(g.pending) > 0 {
		bd = g.board.Copy()
		for _, pl := range g.pending {
			bd.RemoveTile(pl.Row, pl.Col)
		}
	}
	var sb strings.Builder
	sb.WriteString(bd.ToDisplayText())
	sb.WriteString("\n")
	for i, p := range g.players {
		onturn := g.status == StatusActive && i == g.onturn
		sb.WriteString(p.stateString(onturn, p.id == viewer))
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Bag: %d tiles\n", g.bag.Remaining())
	return sb.String()
}
