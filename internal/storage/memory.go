package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/conorfennell/brainstack/internal/domain"
)

// Memory is an in-process Gateway. It hands out and stores deep copies, so
// callers can never observe a state that was not saved.
type Memory struct {
	mu       sync.Mutex
	state    *domain.State
	saveErrs []error
	saves    int
}

// NewMemory returns a Memory gateway seeded with an empty state.
func NewMemory() *Memory {
	return &Memory{state: domain.NewState()}
}

// NewMemoryWith returns a Memory gateway seeded with a copy of state.
func NewMemoryWith(state *domain.State) *Memory {
	return &Memory{state: state.Clone()}
}

// FailNextSave makes the next SaveAll call fail with err.
func (m *Memory) FailNextSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErrs = append(m.saveErrs, err)
}

// Saves reports how many SaveAll calls succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) LoadAll(_ context.Context) (*domain.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

func (m *Memory) SaveAll(_ context.Context, state *domain.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saveErrs) > 0 {
		err := m.saveErrs[0]
		m.saveErrs = m.saveErrs[1:]
		return fmt.Errorf("%w: failed to save state: %w", domain.ErrIO, err)
	}
	m.state = state.Clone()
	m.saves++
	return nil
}
