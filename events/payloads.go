package events

// The payload types below carry the field names clients see.

type GameCreatedPayload struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
}

type GameJoinedPayload struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
}

// GameStatePayload wraps a personalized state snapshot; the concrete
// state type lives with the game.
type GameStatePayload struct {
	GameState any `json:"gameState"`
}

type TurnChangedPayload struct {
	CurrentPlayerID   string `json:"currentPlayerId"`
	CurrentPlayerName string `json:"currentPlayerName"`
}

type TimerUpdatePayload struct {
	PlayerID      string `json:"playerId"`
	TimeRemaining int64  `json:"timeRemaining"`
}

type WordValidatedPayload struct {
	Valid        bool     `json:"valid"`
	PlayerID     string   `json:"playerId,omitempty"`
	Words        []string `json:"words,omitempty"`
	Score        int      `json:"score,omitempty"`
	Error        string   `json:"error,omitempty"`
	InvalidWords []string `json:"invalidWords,omitempty"`
}

type ScoreChange struct {
	PlayerID string `json:"playerId"`
	NewScore int    `json:"newScore"`
}

type ChallengeResultPayload struct {
	Success      bool          `json:"success"`
	Valid        bool          `json:"valid"`
	Message      string        `json:"message"`
	ScoreChanges []ScoreChange `json:"scoreChanges,omitempty"`
}

type PlayerPassedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type PlayerDisconnectedPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type PlayerScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RatingChange is a player's rating movement after a rated game.
type RatingChange struct {
	PlayerID  string `json:"playerId"`
	OldRating int    `json:"oldRating"`
	NewRating int    `json:"newRating"`
	Change    int    `json:"change"`
}

type GameOverPayload struct {
	// Winner is nil for a draw.
	Winner        *PlayerScore   `json:"winner"`
	FinalScores   []PlayerScore  `json:"finalScores"`
	Reason        string         `json:"reason"`
	RatingChanges []RatingChange `json:"ratingChanges,omitempty"`
}

type MatchmakingStartedPayload struct {
	Rating      int `json:"rating"`
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
}

type MatchFoundPayload struct {
	OpponentName string `json:"opponentName"`
	GameID       string `json:"gameId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
