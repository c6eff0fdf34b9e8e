package game

import (
	"fmt"
	"time"

	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/tilemapping"
)

type playerState struct {
	id   string
	name string

	rack   *tilemapping.Rack
	points int

	consecutivePasses int

	// turnStart is zero unless this player's clock is running.
	turnStart     time.Time
	timeRemaining time.Duration
}

func newPlayerState(id, name string, budget time.Duration) *playerState {
	return &playerState{
		id:            id,
		name:          name,
		rack:          tilemapping.NewRack(),
		timeRemaining: budget,
	}
}

// remainingAt is the clock reading at t, counting the running turn.
func (p *playerState) remainingAt(t time.Time) time.Duration {
	if p.turnStart.IsZero() {
		return p.timeRemaining
	}
	return max(0, p.timeRemaining-t.Sub(p.turnStart))
}

// stateString is one scoreboard line. The rack is only shown to its owner.
func (p *playerState) stateString(onturn, showRack bool) string {
	arrow := ""
	if onturn {
		arrow = "-> "
	}
	rackLetters := p.rack.String()
	if !showRack {
		// Don't show rack letters.
		rackLetters = p.rack.Placeholder()
	}
	return fmt.Sprintf("%4v%20v%9v %4v", arrow, p.name, rackLetters, p.points)
}

type playerStates []*playerState

func (p playerStates) scores() []events.PlayerScore {
	out := make([]events.PlayerScore, len(p))
	for i, ps := range p {
		out[i] = events.PlayerScore{ID: ps.id, Name: ps.name, Score: ps.points}
	}
	return out
}
