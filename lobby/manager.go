// Package lobby owns the running games and routes player intents to them.
// It is the piece a transport talks to.
package lobby

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/wordduel/board"
	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/game"
	"github.com/domino14/wordduel/lexicon"
	"github.com/domino14/wordduel/matchmaking"
	"github.com/domino14/wordduel/rating"
)

const DefaultDisconnectGrace = time.Minute

var (
	ErrNotInGame     = errors.New("not in a game")
	ErrGameNotFound  = errors.New("game not found")
	ErrGameStarted   = errors.New("game already started")
	ErrAlreadyInGame = errors.New("already playing a game")
	ErrMissingName   = errors.New("a player name is required")
	ErrUnknownIntent = errors.New("unknown intent")
)

type Options struct {
	Lexicon lexicon.Lexicon
	Events  events.Sink
	// Ratings may be nil, in which case games are unrated.
	Ratings *rating.Store

	TimeBudget        time.Duration
	TickInterval      time.Duration
	MatchScanInterval time.Duration
	DisconnectGrace   time.Duration
	Now               func() time.Time
	// NewGameID defaults to six random hex digits.
	NewGameID func() string
}

// Manager keeps the registries of games and of which player is in which
// game. Lock order: a game's lock may be held while taking the manager's,
// never the other way round.
type Manager struct {
	mu         sync.Mutex
	games      map[string]*game.Game
	playerGame map[string]string
	forget     map[string]*time.Timer

	queue   *matchmaking.Queue
	ratings *rating.Store
	lexicon lexicon.Lexicon
	events  events.Sink

	timeBudget   time.Duration
	tickInterval time.Duration
	grace        time.Duration
	now          func() time.Time
	newGameID    func() string
}

func NewManager(opts Options) *Manager {
	if opts.Events == nil {
		opts.Events = events.Discard
	}
	if opts.Lexicon == nil {
		opts.Lexicon = lexicon.AcceptAll{}
	}
	if opts.DisconnectGrace <= 0 {
		opts.DisconnectGrace = DefaultDisconnectGrace
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewGameID == nil {
		opts.NewGameID = randomGameID
	}
	m := &Manager{
		games:        map[string]*game.Game{},
		playerGame:   map[string]string{},
		forget:       map[string]*time.Timer{},
		ratings:      opts.Ratings,
		lexicon:      opts.Lexicon,
		events:       opts.Events,
		timeBudget:   opts.TimeBudget,
		tickInterval: opts.TickInterval,
		grace:        opts.DisconnectGrace,
		now:          opts.Now,
		newGameID:    opts.NewGameID,
	}
	m.queue = matchmaking.NewQueue(matchmaking.Options{
		CreateGame:   m.CreateMatchedGame,
		Events:       opts.Events,
		Now:          opts.Now,
		ScanInterval: opts.MatchScanInterval,
	})
	return m
}

func randomGameID() string {
	return strings.ToUpper(hex.EncodeToString(frand.Bytes(3)))
}

func (m *Manager) Queue() *matchmaking.Queue {
	return m.queue
}

// Handle carries out one intent. Failures are reported to the caller as an
// event and also returned.
func (m *Manager) Handle(ctx context.Context, in Intent) error {
	var err error
	switch in.Type {
	case IntentCreateGame:
		_, err = m.CreateGame(in.PlayerID, in.PlayerName)
	case IntentJoinGame:
		err = m.JoinGame(in.PlayerID, in.PlayerName, in.GameID)
	case IntentPlaceTiles:
		err = m.placeTiles(in.PlayerID, in.Tiles)
	case IntentSubmitWord:
		return m.submitWord(in.PlayerID)
	case IntentChallengeWord:
		err = m.challenge(in.PlayerID)
	case IntentPassTurn:
		err = m.pass(in.PlayerID)
	case IntentFindMatch:
		err = m.findMatch(in.PlayerID, in.PlayerName)
	case IntentCancelMatch:
		m.cancelMatch(in.PlayerID)
	case IntentDisconnect:
		m.Disconnect(in.PlayerID)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}
	if err != nil {
		log.Debug().Err(err).Str("player", in.PlayerID).Str("intent", string(in.Type)).Msg("intent-rejected")
		m.replyError(in.PlayerID, err)
	}
	return err
}

func (m *Manager) replyError(playerID string, err error) {
	m.events.Emit(events.ToPlayer(playerID, events.Error, events.ErrorPayload{Message: err.Error()}))
}

func (m *Manager) newGame(id string) *game.Game {
	return game.NewGame(id, game.Options{
		Lexicon:      m.lexicon,
		Events:       m.events,
		Now:          m.now,
		TimeBudget:   m.timeBudget,
		TickInterval: m.tickInterval,
		OnGameOver:   m.gameOver,
	})
}

// register files a new game under a fresh id. Must hold m.mu.
func (m *Manager) register() *game.Game {
	id := m.newGameID()
	for m.games[id] != nil {
		id = m.newGameID()
	}
	g := m.newGame(id)
	m.games[id] = g
	return g
}

// checkFree rejects players already seated in a game that is still going.
func (m *Manager) checkFree(playerIDs ...string) error {
	for _, id := range playerIDs {
		if g := m.GameFor(id); g != nil && g.Status() != game.StatusFinished {
			return ErrAlreadyInGame
		}
	}
	return nil
}

// CreateGame opens a game with the creator in the first seat.
func (m *Manager) CreateGame(playerID, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrMissingName
	}
	if err := m.checkFree(playerID); err != nil {
		return "", err
	}
	m.mu.Lock()
	g := m.register()
	m.playerGame[playerID] = g.ID()
	m.mu.Unlock()

	if err := g.AddPlayer(playerID, name); err != nil {
		m.drop(g.ID())
		return "", err
	}
	m.events.Emit(events.Event{
		Type:    events.GameCreated,
		GameID:  g.ID(),
		To:      []string{playerID},
		Payload: events.GameCreatedPayload{GameID: g.ID(), PlayerID: playerID, PlayerName: name},
	})
	log.Info().Str("gameID", g.ID()).Str("player", playerID).Msg("game-created")
	return g.ID(), nil
}

// JoinGame seats a second player, which starts the game.
func (m *Manager) JoinGame(playerID, name, gameID string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	gameID = strings.ToUpper(strings.TrimSpace(gameID))
	g := m.Game(gameID)
	if g == nil {
		return ErrGameNotFound
	}
	if g.Status() != game.StatusWaiting {
		return ErrGameStarted
	}
	if err := m.checkFree(playerID); err != nil {
		return err
	}
	m.mu.Lock()
	prev, hadPrev := m.playerGame[playerID]
	m.playerGame[playerID] = gameID
	m.mu.Unlock()

	// The joiner learns its game before game-start arrives.
	m.events.Emit(events.Event{
		Type:    events.GameJoined,
		GameID:  gameID,
		To:      []string{playerID},
		Payload: events.GameJoinedPayload{GameID: gameID, PlayerID: playerID, PlayerName: name},
	})
	if err := g.AddPlayer(playerID, name); err != nil {
		m.mu.Lock()
		if hadPrev {
			m.playerGame[playerID] = prev
		} else {
			delete(m.playerGame, playerID)
		}
		m.mu.Unlock()
		switch {
		case errors.Is(err, game.ErrGameFull):
			return ErrGameStarted
		case errors.Is(err, game.ErrGameClosed):
			return ErrGameNotFound
		}
		return err
	}
	log.Info().Str("gameID", gameID).Str("player", playerID).Msg("game-joined")
	return nil
}

// CreateMatchedGame sets up a game for two players the matchmaking queue
// paired up.
func (m *Manager) CreateMatchedGame(ctx context.Context, a, b matchmaking.Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := m.checkFree(a.PlayerID, b.PlayerID); err != nil {
		return "", err
	}
	m.mu.Lock()
	g := m.register()
	m.playerGame[a.PlayerID] = g.ID()
	m.playerGame[b.PlayerID] = g.ID()
	m.mu.Unlock()

	for _, e := range []matchmaking.Entry{a, b} {
		m.events.Emit(events.Event{
			Type:    events.GameJoined,
			GameID:  g.ID(),
			To:      []string{e.PlayerID},
			Payload: events.GameJoinedPayload{GameID: g.ID(), PlayerID: e.PlayerID, PlayerName: e.Name},
		})
	}
	for _, e := range []matchmaking.Entry{a, b} {
		if err := g.AddPlayer(e.PlayerID, e.Name); err != nil {
			m.drop(g.ID())
			return "", err
		}
	}
	log.Info().Str("gameID", g.ID()).Str("a", a.PlayerID).Str("b", b.PlayerID).Msg("matched-game-created")
	return g.ID(), nil
}

// Game looks a game up by id.
func (m *Manager) Game(id string) *game.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games[id]
}

// GameFor returns the game a player is seated in, if any.
func (m *Manager) GameFor(playerID string) *game.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.playerGame[playerID]; ok {
		return m.games[id]
	}
	return nil
}

// NumGames is how many games are registered, finished ones included until
// they are forgotten.
func (m *Manager) NumGames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

// broadcastState sends each player their own view of g.
func (m *Manager) broadcastState(g *game.Game) {
	for _, pid := range g.PlayerIDs() {
		m.events.Emit(events.Event{
			Type:    events.GameStateUpdate,
			GameID:  g.ID(),
			To:      []string{pid},
			Payload: events.GameStatePayload{GameState: g.GetState(pid)},
		})
	}
}

func (m *Manager) emitToGame(g *game.Game, t events.Type, payload any) {
	m.events.Emit(events.ToPlayers(g.ID(), g.PlayerIDs(), t, payload))
}

func (m *Manager) placeTiles(playerID string, tiles []board.Placement) error {
	g := m.GameFor(playerID)
	if g == nil {
		return ErrNotInGame
	}
	if err := g.PlaceTiles(playerID, tiles); err != nil {
		return err
	}
	m.broadcastState(g)
	return nil
}

func (m *Manager) submitWord(playerID string) error {
	g := m.GameFor(playerID)
	if g == nil {
		m.replyError(playerID, ErrNotInGame)
		return ErrNotInGame
	}
	res, err := g.SubmitWord(playerID)
	if err != nil {
		payload := events.WordValidatedPayload{Valid: false, Error: err.Error()}
		var iwe *game.InvalidWordsError
		if errors.As(err, &iwe) {
			payload.InvalidWords = iwe.Words
		}
		m.events.Emit(events.Event{Type: events.WordValidated, GameID: g.ID(), To: []string{playerID}, Payload: payload})
		return err
	}
	m.emitToGame(g, events.WordValidated, events.WordValidatedPayload{
		Valid:    true,
		PlayerID: playerID,
		Words:    res.Words,
		Score:    res.Score,
	})
	m.broadcastState(g)
	return nil
}

func (m *Manager) challenge(playerID string) error {
	g := m.GameFor(playerID)
	if g == nil {
		return ErrNotInGame
	}
	res, err := g.HandleChallenge(playerID)
	if err != nil {
		return err
	}
	m.emitToGame(g, events.ChallengeResult, res.Payload())
	m.broadcastState(g)
	return nil
}

func (m *Manager) pass(playerID string) error {
	g := m.GameFor(playerID)
	if g == nil {
		return ErrNotInGame
	}
	if _, err := g.PassTurn(playerID); err != nil {
		return err
	}
	m.emitToGame(g, events.PlayerPassed, events.PlayerPassedPayload{
		PlayerID:   playerID,
		PlayerName: g.PlayerName(playerID),
	})
	m.broadcastState(g)
	return nil
}

func (m *Manager) findMatch(playerID, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrMissingName
	}
	if err := m.checkFree(playerID); err != nil {
		return err
	}
	rec := rating.NewRecord()
	if m.ratings != nil {
		rec = m.ratings.Get(playerID)
	}
	if _, err := m.queue.Add(playerID, name, rec.Rating); err != nil {
		return err
	}
	m.events.Emit(events.ToPlayer(playerID, events.MatchmakingStarted, events.MatchmakingStartedPayload{
		Rating:      rec.Rating,
		GamesPlayed: rec.GamesPlayed,
		Wins:        rec.Wins,
		Losses:      rec.Losses,
	}))
	return nil
}

func (m *Manager) cancelMatch(playerID string) {
	if m.queue.Remove(playerID) {
		m.events.Emit(events.ToPlayer(playerID, events.MatchmakingCancelled, nil))
	}
}

// Disconnect drops a player from the queue and abandons their game. A game
// that was still waiting for an opponent goes at once; others stay
// registered for the grace period.
func (m *Manager) Disconnect(playerID string) {
	m.queue.Remove(playerID)

	m.mu.Lock()
	gameID, ok := m.playerGame[playerID]
	g := m.games[gameID]
	delete(m.playerGame, playerID)
	m.mu.Unlock()
	if !ok || g == nil {
		return
	}

	name := g.PlayerName(playerID)
	var others []string
	for _, pid := range g.PlayerIDs() {
		if pid != playerID {
			others = append(others, pid)
		}
	}
	if len(others) > 0 {
		m.events.Emit(events.ToPlayers(gameID, others, events.PlayerDisconnected,
			events.PlayerDisconnectedPayload{PlayerID: playerID, PlayerName: name}))
	}
	g.Cleanup()
	if g.Status() == game.StatusWaiting {
		// Nobody else is seated; the game can go now.
		m.drop(gameID)
	} else {
		m.scheduleForget(gameID)
	}
	log.Info().Str("gameID", gameID).Str("player", playerID).Msg("player-disconnected")
}

// gameOver runs inside the game's lock when a game ends.
func (m *Manager) gameOver(o game.Outcome) []events.RatingChange {
	m.scheduleForget(o.GameID)
	if o.Draw() || m.ratings == nil {
		return nil
	}
	w, l := o.Players[o.Winner], o.Players[o.Loser]
	res := m.ratings.UpdateRatings(w.ID, l.ID)
	return []events.RatingChange{
		{PlayerID: w.ID, OldRating: res.Winner.Old, NewRating: res.Winner.New, Change: res.Winner.Delta},
		{PlayerID: l.ID, OldRating: res.Loser.Old, NewRating: res.Loser.New, Change: res.Loser.Delta},
	}
}

func (m *Manager) scheduleForget(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forget[gameID]; ok {
		return
	}
	m.forget[gameID] = time.AfterFunc(m.grace, func() { m.drop(gameID) })
}

// drop forgets a game and releases its players.
func (m *Manager) drop(gameID string) {
	m.mu.Lock()
	g := m.games[gameID]
	delete(m.games, gameID)
	if t, ok := m.forget[gameID]; ok {
		t.Stop()
		delete(m.forget, gameID)
	}
	for pid, gid := range m.playerGame {
		if gid == gameID {
			delete(m.playerGame, pid)
		}
	}
	m.mu.Unlock()
	if g != nil {
		g.Cleanup()
		log.Debug().Str("gameID", gameID).Msg("game-removed")
	}
}

// Close abandons every game.
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.drop(id)
	}
}
