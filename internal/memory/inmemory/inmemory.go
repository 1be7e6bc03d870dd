// Package inmemory implements the checkpoint saver on a process-local map,
// for tests and single-node deployments without redis.
package inmemory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mohammad-safakhou/paperchat/internal/agent/state"
	"github.com/mohammad-safakhou/paperchat/internal/memory"
)

type Saver struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Saver {
	return &Saver{data: map[string][]byte{}}
}

// Put stores a deep copy so later mutations of the live state don't bleed
// into the checkpoint.
func (s *Saver) Put(ctx context.Context, sessionID string, st *state.AgentState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[sessionID] = data
	s.mu.Unlock()
	return nil
}

func (s *Saver) Get(ctx context.Context, sessionID string) (*state.AgentState, error) {
	s.mu.RLock()
	data, ok := s.data[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, memory.ErrNotFound
	}
	var st state.AgentState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Saver) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.data, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *Saver) Exists(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	_, ok := s.data[sessionID]
	s.mu.RUnlock()
	return ok, nil
}
