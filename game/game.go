// Package game encapsulates the main mechanics of a two-player crossword
// game: staging and submitting moves, challenges, passes, per-player clocks
// and end-of-game settlement.
package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordduel/board"
	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/lexicon"
	"github.com/domino14/wordduel/tilemapping"
)

const (
	RackTileLimit = 7
	NumPlayers    = 2
	// ChallengePenalty is what a failed challenge costs the challenger.
	ChallengePenalty = 5
	// MaxScorelessTurns consecutive passes, counted across both players,
	// end the game.
	MaxScorelessTurns = 4

	DefaultTimeBudget   = 15 * time.Minute
	DefaultTickInterval = time.Second
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

type EndReason string

const (
	ReasonTilesExhausted EndReason = "tiles exhausted"
	ReasonBothPassed     EndReason = "both passed"
	ReasonTimeout        EndReason = "timeout"
)

var (
	ErrGameNotActive     = errors.New("game is not active")
	ErrGameFull          = errors.New("game is full")
	ErrGameClosed        = errors.New("game was abandoned")
	ErrAlreadyJoined     = errors.New("player already joined this game")
	ErrUnknownPlayer     = errors.New("player is not in this game")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrTilesNotOnRack    = errors.New("you don't have those tiles")
	ErrUnknownLetter     = errors.New("unknown letter")
	ErrNoTilesPlaced     = errors.New("no tiles placed")
	ErrNoWordsFormed     = errors.New("no words formed")
	ErrNoMoveToChallenge = errors.New("no move to challenge")
	ErrOwnMove           = errors.New("cannot challenge your own move")
	ErrNotChallengeable  = errors.New("the last move can no longer be challenged")
)

// InvalidWordsError is returned when a submitted move forms words the
// lexicon rejects.
type InvalidWordsError struct {
	Words []string
}

func (e *InvalidWordsError) Error() string {
	return fmt.Sprintf("invalid word(s): %s", strings.Join(e.Words, ", "))
}

// Outcome describes how a game ended. Winner and Loser are -1 for a draw.
type Outcome struct {
	GameID      string
	Reason      EndReason
	Winner      int
	Loser       int
	Players     []events.PlayerScore
	TimedOutIdx int
}

func (o Outcome) Draw() bool {
	return o.Winner < 0
}

// Options holds the collaborators injected into a Game. Zero values get
// sensible defaults.
type Options struct {
	Lexicon      lexicon.Lexicon
	Events       events.Sink
	Distribution *tilemapping.LetterDistribution
	Layout       []string
	Randomizer   tilemapping.Randomizer
	Now          func() time.Time
	TimeBudget   time.Duration
	// TickInterval is how often the running clock is checked. Zero or
	// negative turns the background ticker off; Tick can still be called.
	TickInterval time.Duration
	// OnGameOver runs with the game locked, just before game-over is
	// emitted. It must not call back into the game. The rating changes it
	// returns are attached to the game-over event.
	OnGameOver func(Outcome) []events.RatingChange
}

// Game is the actual internal game structure that controls the entire
// business logic of the game; drawing, making moves, etc. Every exported
// method takes the game's lock, so one game is only ever mutated by one
// caller at a time, clock expiry included.
type Game struct {
	mu sync.Mutex

	id      string
	status  Status
	board   *board.GameBoard
	bag     *tilemapping.Bag
	ld      *tilemapping.LetterDistribution
	lexicon lexicon.Lexicon
	events  events.Sink
	now     func() time.Time

	timeBudget   time.Duration
	tickInterval time.Duration
	onGameOver   func(Outcome) []events.RatingChange

	players playerStates
	onturn  int
	pending []board.Placement
	history []*Move
	// lastMoveOpen is set by a successful submission and cleared by any
	// later pass or challenge.
	lastMoveOpen   bool
	scorelessTurns int

	clockGen   uint64
	stopTicker chan struct{}
	closed     bool

	endReason EndReason
	winner    int

	logger zerolog.Logger
}

// NewGame is how one instantiates a brand new game. It waits for two
// players to join.
func NewGame(id string, opts Options) *Game {
	if opts.Lexicon == nil {
		opts.Lexicon = lexicon.AcceptAll{}
	}
	if opts.Events == nil {
		opts.Events = events.Discard
	}
	if opts.Distribution == nil {
		opts.Distribution = tilemapping.EnglishLetterDistribution()
	}
	if opts.Layout == nil {
		opts.Layout = board.CrosswordGameBoard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TimeBudget <= 0 {
		opts.TimeBudget = DefaultTimeBudget
	}
	return &Game{
		id:           id,
		status:       StatusWaiting,
		board:        board.MakeBoard(opts.Layout),
		bag:          tilemapping.NewBag(opts.Distribution, opts.Randomizer),
		ld:           opts.Distribution,
		lexicon:      opts.Lexicon,
		events:       opts.Events,
		now:          opts.Now,
		timeBudget:   opts.TimeBudget,
		tickInterval: opts.TickInterval,
		onGameOver:   opts.OnGameOver,
		winner:       -1,
		logger:       log.With().Str("gameID", id).Logger(),
	}
}

// AddPlayer seats a player. The second player starts the game: both racks
// are dealt and the first player's clock starts.
func (g *Game) AddPlayer(id, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGameClosed
	}
	if g.status != StatusWaiting || len(g.players) >= NumPlayers {
		return ErrGameFull
	}
	if g.playerIndex(id) >= 0 {
		return ErrAlreadyJoined
	}
	g.players = append(g.players, newPlayerState(id, name, g.timeBudget))
	g.logger.Info().Str("player", id).Str("name", name).Msg("player-joined")
	if len(g.players) == NumPlayers {
		g.start()
	}
	return nil
}

func (g *Game) start() {
	g.status = StatusActive
	for _, p := range g.players {
		p.rack.Add(tilemapping.Letters(g.bag.Draw(RackTileLimit))...)
	}
	g.onturn = 0
	g.startClock(g.onturn)
	for _, p := range g.players {
		g.events.Emit(events.Event{
			Type:    events.GameStart,
			GameID:  g.id,
			To:      []string{p.id},
			Payload: events.GameStatePayload{GameState: g.stateFor(p.id)},
		})
	}
	g.logger.Info().Str("first", g.players[0].id).Msg("game-started")
}

// endGame settles the game. timedOut is the index of the player whose
// clock ran out, or -1.
func (g *Game) endGame(reason EndReason, timedOut int) {
	if g.status == StatusFinished {
		return
	}
	g.stopClock(g.onturn)
	g.clearStaged()
	g.status = StatusFinished
	g.endReason = reason
	g.lastMoveOpen = false

	if reason == ReasonTilesExhausted || reason == ReasonBothPassed {
		for _, p := range g.players {
			p.points = max(0, p.points-p.rack.ScoreOn(g.ld))
		}
	}

	switch {
	case reason == ReasonTimeout:
		g.winner = otherPlayer(timedOut)
	case g.players[0].points > g.players[1].points:
		g.winner = 0
	case g.players[1].points > g.players[0].points:
		g.winner = 1
	default:
		// Equal scores are a draw.
		g.winner = -1
	}

	outcome := Outcome{
		GameID:      g.id,
		Reason:      reason,
		Winner:      g.winner,
		Loser:       -1,
		Players:     g.players.scores(),
		TimedOutIdx: timedOut,
	}
	if g.winner >= 0 {
		outcome.Loser = otherPlayer(g.winner)
	}

	var changes []events.RatingChange
	if g.onGameOver != nil {
		changes = g.onGameOver(outcome)
	}
	payload := events.GameOverPayload{
		FinalScores:   outcome.Players,
		Reason:        string(reason),
		RatingChanges: changes,
	}
	if g.winner >= 0 {
		w := outcome.Players[g.winner]
		payload.Winner = &w
	}
	g.emitToAll(events.GameOver, payload)
	g.logger.Info().Str("reason", string(reason)).Int("winner", g.winner).
		Int("p0", g.players[0].points).Int("p1", g.players[1].points).Msg("game-over")
}

// Cleanup stops the clocks of an abandoned game without settling it. No
// further moves are accepted.
func (g *Game) Cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == StatusActive {
		g.stopClock(g.onturn)
	}
	g.clearStaged()
	g.closed = true
}

func otherPlayer(idx int) int {
	return (idx + 1) % NumPlayers
}

func (g *Game) playerIndex(id string) int {
	for i, p := range g.players {
		if p.id == id {
			return i
		}
	}
	return -1
}

func (g *Game) curPlayer() *playerState {
	return g.players[g.onturn]
}

func (g *Game) playerIDs() []string {
	ids := make([]string, len(g.players))
	for i, p := range g.players {
		ids[i] = p.id
	}
	return ids
}

func (g *Game) emitToAll(t events.Type, payload any) {
	g.events.Emit(events.ToPlayers(g.id, g.playerIDs(), t, payload))
}

// checkTurn verifies the game accepts moves and that id is on turn.
func (g *Game) checkTurn(id string) error {
	if g.status != StatusActive || g.closed {
		return ErrGameNotActive
	}
	idx := g.playerIndex(id)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	if idx != g.onturn {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) ID() string {
	return g.id
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// PlayerIDs returns the seated players in turn order.
func (g *Game) PlayerIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerIDs()
}

func (g *Game) PlayerName(id string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.playerIndex(id); idx >= 0 {
		return g.players[idx].name
	}
	return ""
}

// Winner returns the winner's id, or "" if there is none (yet).
func (g *Game) Winner() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.winner < 0 || g.status != StatusFinished {
		return ""
	}
	return g.players[g.winner].id
}

func (g *Game) EndReason() EndReason {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endReason
}

// PointsFor returns a player's score.
func (g *Game) PointsFor(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.playerIndex(id); idx >= 0 {
		return g.players[idx].points
	}
	return 0
}

// RackFor returns a copy of a player's rack.
func (g *Game) RackFor(id string) *tilemapping.Rack {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.playerIndex(id); idx >= 0 {
		return g.players[idx].rack.Copy()
	}
	return nil
}

// PlayerOnTurn returns the id of the player to move.
func (g *Game) PlayerOnTurn() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return ""
	}
	return g.curPlayer().id
}

func (g *Game) ScorelessTurns() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scorelessTurns
}

func (g *Game) TilesRemaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bag.Remaining()
}

// TileCount is the number of tiles in the bag, on both racks and committed
// to the board. It stays at the distribution size for the whole game.
func (g *Game) TileCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.bag.Remaining() + g.board.TileCount() - len(g.pending)
	for _, p := range g.players {
		n += p.rack.NumTiles()
	}
	return n
}

// BoardText renders the board, staged tiles included.
func (g *Game) BoardText() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.ToDisplayText()
}

// SetRackFor replaces a player's rack with specific letters drawn from the
// bag, returning the old rack to the bag first. Used for setting up
// positions.
func (g *Game) SetRackFor(id string, letters string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.playerIndex(id)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	p := g.players[idx]
	g.clearStaged()
	old := p.rack.Letters()
	g.bag.ReturnLetters(old)
	if err := g.bag.RemoveTiles([]rune(letters)); err != nil {
		// put the old rack back as it was
		_ = g.bag.RemoveTiles(old)
		return err
	}
	p.rack.Clear()
	p.rack.Add([]rune(letters)...)
	return nil
}
