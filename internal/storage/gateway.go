package storage

import (
	"context"
	"sync"

	"github.com/conorfennell/brainstack/internal/domain"
)

// Gateway loads and saves the whole application state. SaveAll must be
// atomic: either every entity is written or none is. Failures wrap
// domain.ErrIO.
type Gateway interface {
	LoadAll(ctx context.Context) (*domain.State, error)
	SaveAll(ctx context.Context, state *domain.State) error
}

// Store serializes access to a Gateway. Every Update reads the state, lets
// fn mutate it and writes it back under one lock, so two mutations never
// interleave. If fn or the save fails, nothing is written and the next read
// sees the previously committed state.
type Store struct {
	mu sync.Mutex
	gw Gateway
}

// NewStore wraps gw.
func NewStore(gw Gateway) *Store {
	return &Store{gw: gw}
}

// View runs fn over a freshly loaded state. Changes made by fn are discarded.
func (s *Store) View(ctx context.Context, fn func(*domain.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.gw.LoadAll(ctx)
	if err != nil {
		return err
	}
	return fn(state)
}

// Update runs fn over a freshly loaded state and commits the result.
func (s *Store) Update(ctx context.Context, fn func(*domain.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.gw.LoadAll(ctx)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.gw.SaveAll(ctx, state)
}
