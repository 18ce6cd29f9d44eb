// internal/store/store.go
//
// Persistence contracts for live game instances.
// Solo rounds and matches are looked up by id, mutated by the engine, and
// written back whole ("overwrite current state"). Backends:
//   - memory: process-local maps (default).
//   - redis:  JSON documents with a TTL, shared across processes.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/hangman/internal/game"
)

// ErrNotFound is returned when no instance exists for an id.
var ErrNotFound = errors.New("not found")

// RoundStore persists solo rounds.
type RoundStore interface {
	SaveRound(ctx context.Context, r *game.SoloRound) error
	GetRound(ctx context.Context, id string) (*game.SoloRound, error)
}

// MatchStore persists multiplayer matches.
type MatchStore interface {
	SaveMatch(ctx context.Context, m *game.Match) error
	GetMatch(ctx context.Context, id string) (*game.Match, error)
}

// Store is implemented by every backend.
type Store interface {
	RoundStore
	MatchStore
}
