package game

import (
	"time"

	"github.com/domino14/wordduel/events"
)

// startClock starts idx's clock and, when a tick interval is configured,
// a ticker goroutine bound to this clock generation. Must hold g.mu.
func (g *Game) startClock(idx int) {
	p := g.players[idx]
	p.turnStart = g.now()
	g.clockGen++
	if g.tickInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	g.stopTicker = stop
	go g.runTicker(g.clockGen, stop)
}

// stopClock charges the elapsed turn time to idx and invalidates any
// ticks still in flight for the old clock. Must hold g.mu.
func (g *Game) stopClock(idx int) {
	if idx < 0 || idx >= len(g.players) {
		return
	}
	p := g.players[idx]
	if !p.turnStart.IsZero() {
		p.timeRemaining = p.remainingAt(g.now())
		p.turnStart = time.Time{}
	}
	g.clockGen++
	if g.stopTicker != nil {
		close(g.stopTicker)
		g.stopTicker = nil
	}
}

func (g *Game) runTicker(gen uint64, stop chan struct{}) {
	t := time.NewTicker(g.tickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !g.tick(gen) {
				return
			}
		}
	}
}

// tick checks the clock if it is still the one identified by gen. It
// returns false once that clock is gone.
func (g *Game) tick(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.clockGen || g.status != StatusActive || g.closed {
		return false
	}
	return g.checkClock()
}

// Tick checks the running clock now: it emits a timer update, or ends the
// game if the player on turn has run out of time. The ticker goroutine
// does this every tick interval.
func (g *Game) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusActive || g.closed {
		return
	}
	g.checkClock()
}

// checkClock returns false if the game ended. Must hold g.mu.
func (g *Game) checkClock() bool {
	p := g.curPlayer()
	remaining := p.remainingAt(g.now())
	if remaining <= 0 {
		g.logger.Info().Str("player", p.id).Msg("time-expired")
		g.endGame(ReasonTimeout, g.onturn)
		return false
	}
	g.emitToAll(events.TimerUpdate, events.TimerUpdatePayload{
		PlayerID:      p.id,
		TimeRemaining: remaining.Milliseconds(),
	})
	return true
}

// TimeRemaining returns a player's clock reading.
func (g *Game) TimeRemaining(id string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.playerIndex(id); idx >= 0 {
		return g.players[idx].remainingAt(g.now())
	}
	return 0
}
