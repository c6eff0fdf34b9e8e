package lobby

import (
	"github.com/domino14/wordduel/board"
)

// IntentType names something a player asks for. The values are the wire
// names.
type IntentType string

const (
	IntentCreateGame    IntentType = "create-game"
	IntentJoinGame      IntentType = "join-game"
	IntentPlaceTiles    IntentType = "place-tiles"
	IntentSubmitWord    IntentType = "submit-word"
	IntentChallengeWord IntentType = "challenge-word"
	IntentPassTurn      IntentType = "pass-turn"
	IntentFindMatch     IntentType = "find-match"
	IntentCancelMatch   IntentType = "cancel-match"
	// IntentDisconnect is raised by the transport when a player goes away.
	IntentDisconnect IntentType = "disconnect"
)

// An Intent is one inbound request. PlayerID is the stable identity the
// transport vouches for; the other fields depend on Type.
type Intent struct {
	Type       IntentType        `json:"type"`
	PlayerID   string            `json:"playerId"`
	PlayerName string            `json:"playerName,omitempty"`
	GameID     string            `json:"gameId,omitempty"`
	Tiles      []board.Placement `json:"tiles,omitempty"`
}
