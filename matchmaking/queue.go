// Package matchmaking pairs waiting players by rating, widening the
// acceptable rating gap the longer a player waits.
package matchmaking

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordduel/events"
)

const DefaultScanInterval = 2 * time.Second

var (
	ErrAlreadyQueued = errors.New("already in queue")
	ErrMatchPending  = errors.New("a match is already being set up")
)

// An Entry is a player waiting for an opponent.
type Entry struct {
	PlayerID string
	Name     string
	// Rating is the player's rating when they joined the queue.
	Rating   int
	JoinedAt time.Time
	// Ticket identifies this stay in the queue.
	Ticket string

	seq uint64
}

// Wait is how long e has been queued at now.
func (e Entry) Wait(now time.Time) time.Duration {
	return now.Sub(e.JoinedAt)
}

// A Match is a pair taken off the queue together.
type Match struct {
	A, B   Entry
	GameID string
	Err    error
}

// CreateGameFunc sets up a game for a matched pair and returns its id.
type CreateGameFunc func(ctx context.Context, a, b Entry) (string, error)

// Window returns the largest rating gap acceptable after waiting wait.
func Window(wait time.Duration) int {
	switch {
	case wait < 30*time.Second:
		return 150
	case wait < 60*time.Second:
		return 300
	default:
		return math.MaxInt
	}
}

type Options struct {
	CreateGame   CreateGameFunc
	Events       events.Sink
	Now          func() time.Time
	ScanInterval time.Duration
}

// Queue holds waiting players. Add, Remove and the pairing part of Scan all
// take the same lock, so a cancelled player is never matched and nobody is
// matched twice.
type Queue struct {
	mu      sync.Mutex
	entries map[string]*Entry
	// inflight holds players whose game is being created. The value turns
	// false if the player cancels meanwhile.
	inflight map[string]bool
	seq      uint64

	createGame   CreateGameFunc
	events       events.Sink
	now          func() time.Time
	scanInterval time.Duration
}

func NewQueue(opts Options) *Queue {
	if opts.Events == nil {
		opts.Events = events.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ScanInterval <= 0 {
		opts.ScanInterval = DefaultScanInterval
	}
	return &Queue{
		entries:      map[string]*Entry{},
		inflight:     map[string]bool{},
		createGame:   opts.CreateGame,
		events:       opts.Events,
		now:          opts.Now,
		scanInterval: opts.ScanInterval,
	}
}

// Add queues a player with their current rating.
func (q *Queue) Add(playerID, name string, rating int) (Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.entries[playerID]; ok {
		return Entry{}, ErrAlreadyQueued
	}
	if _, ok := q.inflight[playerID]; ok {
		return Entry{}, ErrMatchPending
	}
	q.seq++
	e := &Entry{
		PlayerID: playerID,
		Name:     name,
		Rating:   rating,
		JoinedAt: q.now(),
		Ticket:   uuid.NewString(),
		seq:      q.seq,
	}
	q.entries[playerID] = e
	log.Info().Str("player", playerID).Int("rating", rating).Str("ticket", e.Ticket).
		Int("queueSize", len(q.entries)).Msg("player-queued")
	return *e, nil
}

// Remove takes a player out of the queue and reports whether they were in
// it. It is too late to cancel once a match is being set up, so Remove
// reports false then; the player still gets match-found if the game is
// created, and matchmaking-cancelled instead of a requeue if it isn't.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inflight[playerID]; ok {
		q.inflight[playerID] = false
		return false
	}
	if _, ok := q.entries[playerID]; !ok {
		return false
	}
	delete(q.entries, playerID)
	log.Info().Str("player", playerID).Int("queueSize", len(q.entries)).Msg("player-dequeued")
	return true
}

func (q *Queue) Contains(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[playerID]
	return ok
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// pair runs one pairing pass and takes every matched pair off the queue.
func (q *Queue) pair(now time.Time) []Match {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) < 2 {
		return nil
	}
	waiting := make([]*Entry, 0, len(q.entries))
	for _, e := range q.entries {
		waiting = append(waiting, e)
	}
	slices.SortFunc(waiting, func(a, b *Entry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	processed := map[string]bool{}
	var matches []Match
	for _, p := range waiting {
		if processed[p.PlayerID] {
			continue
		}
		window := Window(p.Wait(now))
		var best *Entry
		bestDiff := math.MaxInt
		for _, o := range waiting {
			if o == p || processed[o.PlayerID] {
				continue
			}
			diff := abs(p.Rating - o.Rating)
			if diff <= window && diff < bestDiff {
				best, bestDiff = o, diff
			}
		}
		if best == nil {
			continue
		}
		processed[p.PlayerID] = true
		processed[best.PlayerID] = true
		delete(q.entries, p.PlayerID)
		delete(q.entries, best.PlayerID)
		q.inflight[p.PlayerID] = true
		q.inflight[best.PlayerID] = true
		matches = append(matches, Match{A: *p, B: *best})
	}
	return matches
}

// Scan pairs whoever can be paired at now and creates their games. Games
// are created outside the queue lock.
func (q *Queue) Scan(ctx context.Context, now time.Time) []Match {
	matches := q.pair(now)
	for i := range matches {
		m := &matches[i]
		log.Info().Str("a", m.A.PlayerID).Int("aRating", m.A.Rating).
			Str("b", m.B.PlayerID).Int("bRating", m.B.Rating).Msg("match-found")
		if q.createGame == nil {
			m.Err = errors.New("no game creator configured")
		} else {
			m.GameID, m.Err = q.createGame(ctx, m.A, m.B)
		}
		q.settle(*m)
	}
	return matches
}

// settle clears the in-flight marks and, if the game couldn't be created,
// requeues whoever didn't cancel.
func (q *Queue) settle(m Match) {
	q.mu.Lock()
	restored := 0
	var cancelled []string
	for _, e := range []Entry{m.A, m.B} {
		stillWaiting := q.inflight[e.PlayerID]
		delete(q.inflight, e.PlayerID)
		if m.Err == nil {
			continue
		}
		if !stillWaiting {
			cancelled = append(cancelled, e.PlayerID)
		} else if _, ok := q.entries[e.PlayerID]; !ok {
			q.entries[e.PlayerID] = &e
			restored++
		}
	}
	q.mu.Unlock()

	if m.Err != nil {
		log.Err(m.Err).Str("a", m.A.PlayerID).Str("b", m.B.PlayerID).
			Int("restored", restored).Msg("matched-game-creation-failed")
		for _, pid := range cancelled {
			q.events.Emit(events.ToPlayer(pid, events.MatchmakingCancelled, nil))
		}
		return
	}
	q.events.Emit(events.ToPlayer(m.A.PlayerID, events.MatchFound,
		events.MatchFoundPayload{OpponentName: m.B.Name, GameID: m.GameID}))
	q.events.Emit(events.ToPlayer(m.B.PlayerID, events.MatchFound,
		events.MatchFoundPayload{OpponentName: m.A.Name, GameID: m.GameID}))
}

// Run scans the queue every scan interval until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	log.Info().Dur("interval", q.scanInterval).Msg("matchmaking-started")
	ticker := time.NewTicker(q.scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("matchmaking-stopped")
			return nil
		case <-ticker.C:
			q.Scan(ctx, q.now())
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
