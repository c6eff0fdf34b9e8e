package rating

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const createRatingsTable = `CREATE TABLE IF NOT EXISTS ratings (
	player_id    TEXT PRIMARY KEY,
	rating       INTEGER NOT NULL,
	games_played INTEGER NOT NULL,
	wins         INTEGER NOT NULL,
	losses       INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
)`

const upsertRating = `INSERT INTO ratings (player_id, rating, games_played, wins, losses, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(player_id) DO UPDATE SET
	rating = excluded.rating,
	games_played = excluded.games_played,
	wins = excluded.wins,
	losses = excluded.losses,
	updated_at = excluded.updated_at`

// SQLiteBackend stores one row per player.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens (creating if needed) the database at path.
func OpenSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time keeps SQLITE_BUSY away.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		log.Warn().Err(err).Msg("sqlite-wal-unavailable")
	}
	if _, err := db.ExecContext(ctx, createRatingsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ratings table: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) Load(ctx context.Context) (map[string]Record, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT player_id, rating, games_played, wins, losses FROM ratings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs := map[string]Record{}
	for rows.Next() {
		var id string
		var rec Record
		if err := rows.Scan(&id, &rec.Rating, &rec.GamesPlayed, &rec.Wins, &rec.Losses); err != nil {
			return nil, err
		}
		recs[id] = rec
	}
	return recs, rows.Err()
}

func (b *SQLiteBackend) Save(ctx context.Context, playerID string, rec Record) error {
	_, err := b.db.ExecContext(ctx, upsertRating,
		playerID, rec.Rating, rec.GamesPlayed, rec.Wins, rec.Losses, time.Now().Unix())
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
