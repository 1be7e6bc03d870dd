// Package memory defines the checkpoint store that persists conversation
// state across turns, keyed by session id.
package memory

import (
	"context"
	"errors"
	"time"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
)

// ErrNotFound is returned by Get when a session has no checkpoint.
var ErrNotFound = errors.New("checkpoint not found")

// Saver persists agent state snapshots. Each Put is a single key-value
// upsert: a write for one session is never visible as a partial write to
// another.
type Saver interface {
	Put(ctx context.Context, sessionID string, st *state.AgentState) error
	Get(ctx context.Context, sessionID string) (*state.AgentState, error)
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// Provider selects a Saver implementation.
type Provider string

const (
	RedisProvider    Provider = "redis"
	InMemoryProvider Provider = "inmemory"
	NoneProvider     Provider = "none"
)

var ErrUnsupportedProvider = errors.New("unsupported memory provider")

// RedisConfig carries connection settings for the redis saver.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Timeout  time.Duration
	TTL      time.Duration
}
