// internal/store/memory.go
//
// In-memory Store. Used by default and in tests.
//
// Characteristics:
//   - Rounds and matches kept in separate maps keyed by id.
//   - RWMutex guards the maps only; instance-level serialization is the
//     caller's job (see Locks).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/hangman/internal/game"
)

type memory struct {
	mu      sync.RWMutex
	rounds  map[string]*game.SoloRound
	matches map[string]*game.Match
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		rounds:  make(map[string]*game.SoloRound),
		matches: make(map[string]*game.Match),
	}
}

func (m *memory) SaveRound(_ context.Context, r *game.SoloRound) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[r.ID] = r
	return nil
}

func (m *memory) GetRound(_ context.Context, id string) (*game.SoloRound, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rounds[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (m *memory) SaveMatch(_ context.Context, mt *game.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[mt.ID] = mt
	return nil
}

func (m *memory) GetMatch(_ context.Context, id string) (*game.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mt, ok := m.matches[id]; ok {
		return mt, nil
	}
	return nil, ErrNotFound
}
