package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/benbeisheim/chess-backend/internal/model"
)

const (
	redisPrefix   = "chess:"
	redisIndexKey = redisPrefix + "games"
)

// Redis stores JSON game records under chess:game:<id> and keeps the ids in
// the chess:games set.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func OpenRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("redis url required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(ctx, redis.NewClient(opts), ttl)
}

// NewRedis wraps an existing client and checks that the server answers.
func NewRedis(ctx context.Context, rdb *redis.Client, ttl time.Duration) (*Redis, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (s *Redis) Save(ctx context.Context, rec model.GameRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisGameKey(rec.ID), raw, s.ttl)
		pipe.SAdd(ctx, redisIndexKey, rec.ID)
		return nil
	})
	return err
}

func (s *Redis) Load(ctx context.Context, id string) (model.GameRecord, error) {
	var rec model.GameRecord
	raw, err := s.rdb.Get(ctx, redisGameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode game %s: %w", id, err)
	}
	return rec, nil
}

// List returns the indexed records, dropping ids whose record has expired.
func (s *Redis) List(ctx context.Context) ([]model.GameRecord, error) {
	ids, err := s.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)

	out := make([]model.GameRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			s.rdb.SRem(ctx, redisIndexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisGameKey(id))
		pipe.SRem(ctx, redisIndexKey, id)
		return nil
	})
	return err
}

func (s *Redis) Close() error {
	return s.rdb.Close()
}

func redisGameKey(id string) string {
	return redisPrefix + gameKey(id)
}
