// Package redis implements the checkpoint saver on a redis key-value store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/internal/memory"
)

// Saver stores one JSON snapshot per session under "checkpoint:<session_id>".
type Saver struct {
	client *redis.Client
	ttl    time.Duration
}

// Conn opens a redis connection and verifies it with a ping.
func Conn(ctx context.Context, cfg memory.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// New creates a redis-backed saver. A zero ttl means checkpoints never
// expire.
func New(client *redis.Client, ttl time.Duration) *Saver {
	return &Saver{client: client, ttl: ttl}
}

func key(sessionID string) string { return "checkpoint:" + sessionID }

func (s *Saver) Put(ctx context.Context, sessionID string, st *state.AgentState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	if err := s.client.Set(ctx, key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	return nil
}

func (s *Saver) Get(ctx context.Context, sessionID string) (*state.AgentState, error) {
	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, memory.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	var st state.AgentState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}
	return &st, nil
}

func (s *Saver) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting checkpoint: %w", err)
	}
	return nil
}

func (s *Saver) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking checkpoint: %w", err)
	}
	return n > 0, nil
}
