package lobby

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/wordduel/board"
	"github.com/domino14/wordduel/events"
	"github.com/domino14/wordduel/game"
	"github.com/domino14/wordduel/lexicon"
	"github.com/domino14/wordduel/matchmaking"
	"github.com/domino14/wordduel/rating"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	*Manager
	rec     *events.Recorder
	clock   *fakeClock
	ratings *rating.Store
}

func newFixture(t *testing.T, lex lexicon.Lexicon, mods ...func(*Options)) *fixture {
	t.Helper()
	ctx := context.Background()
	store := rating.NewStore(ctx, rating.NewMemoryBackend())
	rec := &events.Recorder{}
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	ids := []string{"AAA111", "BBB222", "CCC333"}
	opts := Options{
		Lexicon:    lex,
		Events:     rec,
		Ratings:    store,
		TimeBudget: time.Minute,
		Now:        clock.Now,
		NewGameID: func() string {
			id := ids[0]
			ids = append(ids[1:], id+"X")
			return id
		},
	}
	for _, mod := range mods {
		mod(&opts)
	}
	m := NewManager(opts)
	t.Cleanup(func() {
		m.Close()
		_ = store.Close()
	})
	return &fixture{Manager: m, rec: rec, clock: clock, ratings: store}
}

// startGame has alice create a game and bob join it.
func (f *fixture) startGame(t *testing.T) *game.Game {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.Handle(ctx, Intent{Type: IntentCreateGame, PlayerID: "alice", PlayerName: "Alice"}))
	require.NoError(t, f.Handle(ctx, Intent{Type: IntentJoinGame, PlayerID: "bob", PlayerName: "Bob", GameID: "AAA111"}))
	g := f.Game("AAA111")
	require.NotNil(t, g)
	return g
}

func across(row, col int, word string) []board.Placement {
	out := make([]board.Placement, 0, len(word))
	for i, l := range word {
		out = append(out, board.Placement{Row: row, Col: col + i, Letter: l})
	}
	return out
}

func TestCreateAndJoin(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	g := f.startGame(t)

	is.Equal(g.Status(), game.StatusActive)
	is.Equal(g.PlayerIDs(), []string{"alice", "bob"})
	is.Equal(f.GameFor("alice"), g)
	is.Equal(f.GameFor("bob"), g)

	created := f.rec.OfType(events.GameCreated)
	is.Equal(len(created), 1)
	is.Equal(created[0].To, []string{"alice"})
	is.Equal(created[0].Payload, events.GameCreatedPayload{GameID: "AAA111", PlayerID: "alice", PlayerName: "Alice"})

	// bob hears he joined before the game starts.
	bobs := f.rec.For("bob")
	is.Equal(bobs[0].Type, events.GameJoined)
	is.Equal(bobs[1].Type, events.GameStart)
	is.Equal(len(f.rec.OfType(events.GameStart)), 2)
}

func TestJoinIsCaseInsensitive(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	ctx := context.Background()
	is.NoErr(f.Handle(ctx, Intent{Type: IntentCreateGame, PlayerID: "alice", PlayerName: "Alice"}))
	is.NoErr(f.Handle(ctx, Intent{Type: IntentJoinGame, PlayerID: "bob", PlayerName: "Bob", GameID: " aaa111 "}))
	is.Equal(f.Game("AAA111").Status(), game.StatusActive)
}

func TestJoinErrors(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	ctx := context.Background()

	err := f.Handle(ctx, Intent{Type: IntentJoinGame, PlayerID: "bob", PlayerName: "Bob", GameID: "NOPE"})
	is.Equal(err, ErrGameNotFound)
	errs := f.rec.OfType(events.Error)
	is.Equal(len(errs), 1)
	is.Equal(errs[0].To, []string{"bob"})
	is.Equal(errs[0].Payload, events.ErrorPayload{Message: "game not found"})

	f.startGame(t)
	err = f.Handle(ctx, Intent{Type: IntentJoinGame, PlayerID: "carol", PlayerName: "Carol", GameID: "AAA111"})
	is.Equal(err, ErrGameStarted)
	is.Equal(f.GameFor("carol"), nil)

	// Seated players can't wander into other games.
	err = f.Handle(ctx, Intent{Type: IntentCreateGame, PlayerID: "alice", PlayerName: "Alice"})
	is.Equal(err, ErrAlreadyInGame)

	err = f.Handle(ctx, Intent{Type: IntentCreateGame, PlayerID: "dave"})
	is.Equal(err, ErrMissingName)
}

func TestUnknownIntent(t *testing.T) {
	f := newFixture(t, lexicon.AcceptAll{})
	err := f.Handle(context.Background(), Intent{Type: "dance", PlayerID: "alice"})
	assert.ErrorIs(t, err, ErrUnknownIntent)
	assert.Len(t, f.rec.OfType(events.Error), 1)
}

func TestMovesOutsideAGame(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	ctx := context.Background()
	for _, typ := range []IntentType{IntentPlaceTiles, IntentSubmitWord, IntentChallengeWord, IntentPassTurn} {
		err := f.Handle(ctx, Intent{Type: typ, PlayerID: "ghost"})
		is.Equal(err, ErrNotInGame)
	}
	is.Equal(len(f.rec.OfType(events.Error)), 4)
}

func TestPlaceAndSubmit(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	g := f.startGame(t)
	ctx := context.Background()
	is.NoErr(g.SetRackFor("alice", "CATDOGS"))
	f.rec.Reset()

	is.NoErr(f.Handle(ctx, Intent{Type: IntentPlaceTiles, PlayerID: "alice", Tiles: across(7, 7, "CAT")}))
	updates := f.rec.OfType(events.GameStateUpdate)
	is.Equal(len(updates), 2)
	// Each player gets their own view.
	aliceView := updates[0].Payload.(events.GameStatePayload).GameState.(*game.State)
	bobView := updates[1].Payload.(events.GameStatePayload).GameState.(*game.State)
	is.Equal(updates[0].To, []string{"alice"})
	is.Equal(aliceView.Players[0].Rack != "", true)
	is.Equal(bobView.Players[0].Rack, "???????")
	is.True(aliceView.Board[7][7] != nil)
	is.Equal(bobView.Board[7][7], nil)

	f.rec.Reset()
	is.NoErr(f.Handle(ctx, Intent{Type: IntentSubmitWord, PlayerID: "alice"}))
	validated := f.rec.OfType(events.WordValidated)
	is.Equal(len(validated), 1)
	is.Equal(validated[0].To, []string{"alice", "bob"})
	is.Equal(validated[0].Payload, events.WordValidatedPayload{
		Valid: true, PlayerID: "alice", Words: []string{"CAT"}, Score: 10,
	})
	is.Equal(len(f.rec.OfType(events.GameStateUpdate)), 2)
	is.Equal(g.PlayerOnTurn(), "bob")
}

func TestRejectedSubmitGoesToCallerOnly(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.NewWordList("test", "CAT"))
	g := f.startGame(t)
	ctx := context.Background()
	is.NoErr(g.SetRackFor("alice", "CATDOGS"))
	is.NoErr(f.Handle(ctx, Intent{Type: IntentPlaceTiles, PlayerID: "alice", Tiles: across(7, 7, "DOG")}))
	f.rec.Reset()

	err := f.Handle(ctx, Intent{Type: IntentSubmitWord, PlayerID: "alice"})
	var iwe *game.InvalidWordsError
	is.True(errors.As(err, &iwe))
	evts := f.rec.Events()
	is.Equal(len(evts), 1)
	is.Equal(evts[0].Type, events.WordValidated)
	is.Equal(evts[0].To, []string{"alice"})
	p := evts[0].Payload.(events.WordValidatedPayload)
	is.True(!p.Valid)
	is.Equal(p.InvalidWords, []string{"DOG"})
	is.Equal(g.PlayerOnTurn(), "alice")
}

func TestChallengeBroadcast(t *testing.T) {
	is := is.New(t)
	wl := lexicon.NewWordList("test")
	f := newFixture(t, wl)
	g := f.startGame(t)
	ctx := context.Background()
	is.NoErr(g.SetRackFor("alice", "CATDOGS"))
	wl.Add("CAT")
	is.NoErr(f.Handle(ctx, Intent{Type: IntentPlaceTiles, PlayerID: "alice", Tiles: across(7, 7, "CAT")}))
	is.NoErr(f.Handle(ctx, Intent{Type: IntentSubmitWord, PlayerID: "alice"}))
	wl.Remove("CAT")
	f.rec.Reset()

	is.NoErr(f.Handle(ctx, Intent{Type: IntentChallengeWord, PlayerID: "bob"}))
	results := f.rec.OfType(events.ChallengeResult)
	is.Equal(len(results), 1)
	is.Equal(results[0].To, []string{"alice", "bob"})
	p := results[0].Payload.(events.ChallengeResultPayload)
	is.True(p.Success)
	is.True(!p.Valid)
	is.Equal(g.PointsFor("alice"), 0)
	is.Equal(len(f.rec.OfType(events.GameStateUpdate)), 2)

	// Only the player on turn may challenge, and only once.
	err := f.Handle(ctx, Intent{Type: IntentChallengeWord, PlayerID: "bob"})
	is.True(err != nil)
}

func TestPassesEndInDraw(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	g := f.startGame(t)
	ctx := context.Background()
	is.NoErr(g.SetRackFor("alice", "E"))
	is.NoErr(g.SetRackFor("bob", "E"))

	for _, pid := range []string{"alice", "bob", "alice", "bob"} {
		is.NoErr(f.Handle(ctx, Intent{Type: IntentPassTurn, PlayerID: pid}))
	}
	is.Equal(len(f.rec.OfType(events.PlayerPassed)), 4)
	over := f.rec.OfType(events.GameOver)
	is.Equal(len(over), 1)
	payload := over[0].Payload.(events.GameOverPayload)
	is.Equal(payload.Winner, nil)
	is.Equal(len(payload.RatingChanges), 0)
	is.Equal(f.ratings.Get("alice").GamesPlayed, 0)
}

func TestTimeoutUpdatesRatings(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	g := f.startGame(t)

	f.clock.Advance(time.Minute + time.Second)
	g.Tick()
	is.Equal(g.Status(), game.StatusFinished)
	is.Equal(g.Winner(), "bob")

	over := f.rec.OfType(events.GameOver)
	is.Equal(len(over), 1)
	payload := over[0].Payload.(events.GameOverPayload)
	is.Equal(payload.RatingChanges, []events.RatingChange{
		{PlayerID: "bob", OldRating: 1000, NewRating: 1016, Change: 16},
		{PlayerID: "alice", OldRating: 1000, NewRating: 984, Change: -16},
	})
	is.Equal(f.ratings.Get("bob").Wins, 1)
	is.Equal(f.ratings.Get("alice").Losses, 1)

	// A finished game doesn't stop either player from starting another.
	_, err := f.CreateGame("alice", "Alice")
	is.NoErr(err)
}

func TestFinishedGamesAreForgotten(t *testing.T) {
	f := newFixture(t, lexicon.AcceptAll{}, func(o *Options) {
		o.DisconnectGrace = 10 * time.Millisecond
	})
	g := f.startGame(t)
	f.clock.Advance(2 * time.Minute)
	g.Tick()
	assert.Eventually(t, func() bool { return f.NumGames() == 0 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, f.GameFor("alice"))
}

func TestMatchmaking(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	ctx := context.Background()

	is.NoErr(f.Handle(ctx, Intent{Type: IntentFindMatch, PlayerID: "alice", PlayerName: "Alice"}))
	started := f.rec.For("alice")
	is.Equal(started[0].Type, events.MatchmakingStarted)
	is.Equal(started[0].Payload, events.MatchmakingStartedPayload{Rating: rating.DefaultRating})

	err := f.Handle(ctx, Intent{Type: IntentFindMatch, PlayerID: "alice", PlayerName: "Alice"})
	is.Equal(err, matchmaking.ErrAlreadyQueued)

	is.NoErr(f.Handle(ctx, Intent{Type: IntentFindMatch, PlayerID: "bob", PlayerName: "Bob"}))
	matches := f.Queue().Scan(ctx, f.clock.Now())
	is.Equal(len(matches), 1)
	is.NoErr(matches[0].Err)

	g := f.GameFor("alice")
	is.True(g != nil)
	is.Equal(f.GameFor("bob"), g)
	is.Equal(g.Status(), game.StatusActive)
	is.Equal(f.Queue().Len(), 0)

	found := f.rec.OfType(events.MatchFound)
	is.Equal(len(found), 2)
	is.Equal(len(f.rec.OfType(events.GameStart)), 2)
	is.Equal(len(f.rec.OfType(events.GameJoined)), 2)
}

func TestCancelMatch(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	ctx := context.Background()
	is.NoErr(f.Handle(ctx, Intent{Type: IntentFindMatch, PlayerID: "alice", PlayerName: "Alice"}))
	is.NoErr(f.Handle(ctx, Intent{Type: IntentCancelMatch, PlayerID: "alice"}))
	is.Equal(len(f.rec.OfType(events.MatchmakingCancelled)), 1)
	is.Equal(f.Queue().Len(), 0)

	// Cancelling again is a no-op.
	is.NoErr(f.Handle(ctx, Intent{Type: IntentCancelMatch, PlayerID: "alice"}))
	is.Equal(len(f.rec.OfType(events.MatchmakingCancelled)), 1)
}

func TestDisconnect(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{}, func(o *Options) {
		o.DisconnectGrace = 10 * time.Millisecond
	})
	g := f.startGame(t)
	ctx := context.Background()

	is.NoErr(f.Handle(ctx, Intent{Type: IntentDisconnect, PlayerID: "alice"}))
	gone := f.rec.OfType(events.PlayerDisconnected)
	is.Equal(len(gone), 1)
	is.Equal(gone[0].To, []string{"bob"})
	is.Equal(gone[0].Payload, events.PlayerDisconnectedPayload{PlayerID: "alice", PlayerName: "Alice"})
	is.Equal(f.GameFor("alice"), nil)

	// The abandoned game takes no more moves and is unrated.
	_, err := g.PassTurn("alice")
	is.Equal(err, game.ErrGameNotActive)
	is.Equal(len(f.rec.OfType(events.GameOver)), 0)

	assert.Eventually(t, func() bool { return f.GameFor("bob") == nil }, time.Second, 5*time.Millisecond)
	is.Equal(f.NumGames(), 0)
}

func TestCreatorDisconnectRemovesWaitingGame(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	ctx := context.Background()
	id, err := f.CreateGame("alice", "Alice")
	is.NoErr(err)
	g := f.Game(id)

	f.Disconnect("alice")
	is.Equal(f.Game(id), nil)
	is.Equal(f.NumGames(), 0)
	is.Equal(f.JoinGame("bob", "Bob", id), ErrGameNotFound)
	is.Equal(f.GameFor("bob"), nil)
	// A stale handle cannot seat anyone either.
	is.Equal(g.AddPlayer("bob", "Bob"), game.ErrGameClosed)

	f.rec.Reset()
	is.NoErr(f.Handle(ctx, Intent{Type: IntentCreateGame, PlayerID: "bob", PlayerName: "Bob"}))
	is.Equal(len(f.rec.OfType(events.GameCreated)), 1)
}

func TestDisconnectLeavesQueue(t *testing.T) {
	is := is.New(t)
	f := newFixture(t, lexicon.AcceptAll{})
	ctx := context.Background()
	is.NoErr(f.Handle(ctx, Intent{Type: IntentFindMatch, PlayerID: "alice", PlayerName: "Alice"}))
	f.Disconnect("alice")
	is.Equal(f.Queue().Len(), 0)
}
