// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Sessions live only as long as the process does.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Update runs the caller's mutation while holding the lock, so operations
//     on a session never interleave (game.Session itself is not concurrency-safe).
//   - ErrNotFound is returned for unknown IDs.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robalobadob/numberguess/internal/game"
)

// ErrNotFound is returned when no session exists for an ID.
var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for game sessions.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Update looks up a session and applies fn to it under the store lock.
	// fn's error is returned unchanged.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	// Delete removes a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.Mutex               // guards sessions and every session's state
	sessions map[string]*game.Session // keyed by Session.ID()
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

// Get returns the stored pointer. Callers that mutate it must go through Update.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("get %q: %w", id, ErrNotFound)
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	return fn(s)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
