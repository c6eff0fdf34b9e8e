// Package events defines the outbound messages the game core produces for
// whatever transport delivers them to players.
package events

import (
	"sync"
)

// Type names an outbound event. The values are the wire names.
type Type string

const (
	GameCreated          Type = "game-created"
	GameJoined           Type = "game-joined"
	GameStart            Type = "game-start"
	GameStateUpdate      Type = "game-state-update"
	TurnChanged          Type = "turn-changed"
	TimerUpdate          Type = "timer-update"
	WordValidated        Type = "word-validated"
	ChallengeResult      Type = "challenge-result"
	PlayerPassed         Type = "player-passed"
	PlayerDisconnected   Type = "player-disconnected"
	GameOver             Type = "game-over"
	MatchmakingStarted   Type = "matchmaking-started"
	MatchFound           Type = "match-found"
	MatchmakingCancelled Type = "matchmaking-cancelled"
	Error                Type = "error"
)

// An Event is addressed to the players listed in To. GameID names the game
// it concerns, if any.
type Event struct {
	Type    Type     `json:"type"`
	GameID  string   `json:"gameId,omitempty"`
	To      []string `json:"-"`
	Payload any      `json:"payload,omitempty"`
}

// ToPlayer builds an event for a single recipient.
func ToPlayer(playerID string, t Type, payload any) Event {
	return Event{Type: t, To: []string{playerID}, Payload: payload}
}

// ToPlayers builds an event for several recipients of one game.
func ToPlayers(gameID string, playerIDs []string, t Type, payload any) Event {
	to := make([]string, len(playerIDs))
	copy(to, playerIDs)
	return Event{Type: t, GameID: gameID, To: to, Payload: payload}
}

// Sink receives events. Emit must not block for long; it is called with
// game locks held.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Recorder keeps every event it sees. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of one type.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// For returns the events addressed to a player by id.
func (r *Recorder) For(playerID string) []Event {
	var out []Event
	for _, e := range r.Events() {
		for _, to := range e.To {
			if to == playerID {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
