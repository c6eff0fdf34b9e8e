package rating

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/domino14/wordduel/config"
)

// A Backend durably stores rating records keyed by player id.
type Backend interface {
	Name() string
	Load(ctx context.Context) (map[string]Record, error)
	Save(ctx context.Context, playerID string, rec Record) error
	Close() error
}

// MemoryBackend keeps records in memory only.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: map[string]Record{}}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Load(ctx context.Context) (map[string]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.records), nil
}

func (m *MemoryBackend) Save(ctx context.Context, playerID string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[playerID] = rec
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// OpenBackend builds the backend named by the configuration.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch kind := cfg.GetString(config.ConfigRatingBackend); kind {
	case config.RatingBackendYAML:
		return NewFileBackend(cfg.RatingsFile()), nil
	case config.RatingBackendSQLite:
		return OpenSQLiteBackend(ctx, cfg.SQLitePath())
	case config.RatingBackendRedis:
		return OpenRedisBackend(ctx, cfg.GetString(config.ConfigRedisURL))
	case config.RatingBackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown rating backend %q", kind)
	}
}
