// internal/store/redis.go
//
// Redis-backed Store. Each instance is one JSON string key:
//   hangman:round:<id>
//   hangman:match:<id>
// Keys expire after the configured TTL; every save refreshes it.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/hangman/internal/game"
)

const keyPrefix = "hangman:"

// RedisStore keeps rounds and matches in Redis.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl means keys never expire.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// OpenRedis parses url, connects and pings.
func OpenRedis(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) SaveRound(ctx context.Context, r *game.SoloRound) error {
	return s.put(ctx, roundKey(r.ID), r)
}

func (s *RedisStore) GetRound(ctx context.Context, id string) (*game.SoloRound, error) {
	var r game.SoloRound
	if err := s.get(ctx, roundKey(id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RedisStore) SaveMatch(ctx context.Context, m *game.Match) error {
	return s.put(ctx, matchKey(m.ID), m)
}

func (s *RedisStore) GetMatch(ctx context.Context, id string) (*game.Match, error) {
	var m game.Match
	if err := s.get(ctx, matchKey(id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *RedisStore) put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, v any) error {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func roundKey(id string) string { return keyPrefix + "round:" + id }
func matchKey(id string) string { return keyPrefix + "match:" + id }
