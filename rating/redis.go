package rating

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisIndexKey     = "wordduel:ratings"
	redisRecordPrefix = "wordduel:rating:"
)

// RedisBackend stores each record as a hash, with a set indexing every
// known player id.
type RedisBackend struct {
	rdb *redis.Client
}

// OpenRedisBackend connects to the server at url and checks it is reachable.
func OpenRedisBackend(ctx context.Context, url string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisBackend(rdb), nil
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Name() string { return "redis" }

func recordKey(playerID string) string { return redisRecordPrefix + playerID }

func (b *RedisBackend) Load(ctx context.Context) (map[string]Record, error) {
	ids, err := b.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]Record{}, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = b.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, recordKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	recs := make(map[string]Record, len(ids))
	for i, id := range ids {
		var rec Record
		if err := cmds[i].Scan(&rec); err != nil {
			return nil, fmt.Errorf("reading rating of %s: %w", id, err)
		}
		recs[id] = rec
	}
	return recs, nil
}

func (b *RedisBackend) Save(ctx context.Context, playerID string, rec Record) error {
	_, err := b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, recordKey(playerID),
			"rating", rec.Rating,
			"gamesPlayed", rec.GamesPlayed,
			"wins", rec.Wins,
			"losses", rec.Losses)
		pipe.SAdd(ctx, redisIndexKey, playerID)
		return nil
	})
	return err
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
