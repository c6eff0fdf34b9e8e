// Package rating keeps Elo-style player ratings and persists them through a
// pluggable backend.
package rating

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	DefaultRating = 1000
	// ProvisionalGames is the number of games played under the higher
	// K-factor.
	ProvisionalGames = 30
	ProvisionalK     = 32
	EstablishedK     = 24
)

// A Record is everything stored about a player's rating.
type Record struct {
	Rating      int `json:"rating" yaml:"rating" redis:"rating"`
	GamesPlayed int `json:"gamesPlayed" yaml:"gamesPlayed" redis:"gamesPlayed"`
	Wins        int `json:"wins" yaml:"wins" redis:"wins"`
	Losses      int `json:"losses" yaml:"losses" redis:"losses"`
}

// NewRecord is the record of a player who has never finished a game.
func NewRecord() Record {
	return Record{Rating: DefaultRating}
}

// Entry is a record with the player it belongs to.
type Entry struct {
	PlayerID string `json:"playerId"`
	Record
}

// Change is one player's movement after a game.
type Change struct {
	PlayerID string
	Old      int
	New      int
	Delta    int
}

type Result struct {
	Winner Change
	Loser  Change
}

// Expected returns the expected score of a player rated r against one
// rated opp.
func Expected(r, opp int) float64 {
	return 1 / (1 + math.Pow(10, float64(opp-r)/400))
}

// KFactor returns how far a single game can move a rating.
func KFactor(gamesPlayed int) int {
	if gamesPlayed < ProvisionalGames {
		return ProvisionalK
	}
	return EstablishedK
}

func adjust(rec Record, opp int, actual float64) int {
	k := float64(KFactor(rec.GamesPlayed))
	return max(0, int(math.Round(float64(rec.Rating)+k*(actual-Expected(rec.Rating, opp)))))
}

type Option func(*Store)

// WithRetry sets how many times a failed save is attempted and the base
// backoff delay between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(s *Store) {
		s.attempts = attempts
		s.retryDelay = delay
	}
}

// Store holds every known rating in memory. Updates are applied in memory
// immediately and written to the backend in the background; a failed write
// is logged and never rolls back the update.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record

	backend    Backend
	attempts   uint
	retryDelay time.Duration

	// dirty holds records waiting to be written. Several updates to the same
	// player collapse into one write.
	dirtyMu sync.Mutex
	dirty   map[string]Record
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	ctx     context.Context
}

// NewStore loads all records from backend. A failed load is logged and the
// store starts empty.
func NewStore(ctx context.Context, backend Backend, opts ...Option) *Store {
	s := &Store{
		records:    map[string]Record{},
		backend:    backend,
		attempts:   3,
		retryDelay: 100 * time.Millisecond,
		dirty:      map[string]Record{},
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		ctx:        context.WithoutCancel(ctx),
	}
	for _, o := range opts {
		o(s)
	}
	recs, err := backend.Load(ctx)
	if err != nil {
		log.Err(err).Str("backend", backend.Name()).Msg("ratings-load-failed-starting-fresh")
	} else {
		s.records = recs
		log.Info().Int("players", len(recs)).Str("backend", backend.Name()).Msg("loaded-ratings")
	}
	go s.writer()
	return s
}

// Get returns a player's record, or a fresh one for an unseen player.
func (s *Store) Get(id string) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		return rec
	}
	return NewRecord()
}

// UpdateRatings scores a decisive game between winnerID and loserID.
func (s *Store) UpdateRatings(winnerID, loserID string) Result {
	s.mu.Lock()
	w, ok := s.records[winnerID]
	if !ok {
		w = NewRecord()
	}
	l, ok := s.records[loserID]
	if !ok {
		l = NewRecord()
	}

	res := Result{
		Winner: Change{PlayerID: winnerID, Old: w.Rating, New: adjust(w, l.Rating, 1)},
		Loser:  Change{PlayerID: loserID, Old: l.Rating, New: adjust(l, w.Rating, 0)},
	}
	res.Winner.Delta = res.Winner.New - res.Winner.Old
	res.Loser.Delta = res.Loser.New - res.Loser.Old

	w = Record{Rating: res.Winner.New, GamesPlayed: w.GamesPlayed + 1, Wins: w.Wins + 1, Losses: w.Losses}
	l = Record{Rating: res.Loser.New, GamesPlayed: l.GamesPlayed + 1, Wins: l.Wins, Losses: l.Losses + 1}
	s.records[winnerID] = w
	s.records[loserID] = l
	s.mu.Unlock()

	log.Info().Str("winner", winnerID).Int("winnerOld", res.Winner.Old).Int("winnerNew", res.Winner.New).
		Str("loser", loserID).Int("loserOld", res.Loser.Old).Int("loserNew", res.Loser.New).
		Msg("ratings-updated")

	s.persist(winnerID, w)
	s.persist(loserID, l)
	return res
}

// TopPlayers returns up to limit players that have finished a game, best
// first. Equal ratings are ordered by wins.
func (s *Store) TopPlayers(limit int) []Entry {
	s.mu.RLock()
	entries := lo.FilterMap(lo.Entries(s.records), func(e lo.Entry[string, Record], _ int) (Entry, bool) {
		return Entry{PlayerID: e.Key, Record: e.Value}, e.Value.GamesPlayed > 0
	})
	s.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(b.Rating, a.Rating),
			cmp.Compare(b.Wins, a.Wins),
			cmp.Compare(a.PlayerID, b.PlayerID),
		)
	})
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func (s *Store) persist(id string, rec Record) {
	s.dirtyMu.Lock()
	s.dirty[id] = rec
	s.dirtyMu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) writer() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.flush()
		case <-s.quit:
			s.flush()
			return
		}
	}
}

func (s *Store) flush() {
	s.dirtyMu.Lock()
	batch := s.dirty
	s.dirty = map[string]Record{}
	s.dirtyMu.Unlock()

	for id, rec := range batch {
		err := retry.Do(
			func() error {
				return s.backend.Save(s.ctx, id, rec)
			},
			retry.Context(s.ctx),
			retry.Attempts(s.attempts),
			retry.Delay(s.retryDelay),
			retry.LastErrorOnly(true),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				log.Err(err).Uint("n", n).Str("player", id).Msg("rating-save-failed-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			log.Err(err).Str("player", id).Msg("rating-save-failed")
		}
	}
}

// Close writes out anything still pending and stops the background writer.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.quit)
	})
	<-s.done
	return s.backend.Close()
}
