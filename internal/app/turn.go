package app

import (
	"context"
	"sync"

	"gopherai-insight/internal/model"
)

// TurnTracker admits at most one chat turn per user and records how far it
// has progressed.
type TurnTracker interface {
	// Begin claims the user's turn slot. It reports false when a turn is
	// already in flight.
	Begin(ctx context.Context, userID uint) (bool, error)
	Advance(ctx context.Context, userID uint, state model.TurnState) error
	End(ctx context.Context, userID uint) error
	State(ctx context.Context, userID uint) (model.TurnState, error)
}

// MemoryTurnTracker keeps turn state in process memory.
type MemoryTurnTracker struct {
	mu     sync.Mutex
	states map[uint]model.TurnState
}

func NewMemoryTurnTracker() *MemoryTurnTracker {
	return &MemoryTurnTracker{states: make(map[uint]model.TurnState)}
}

func (t *MemoryTurnTracker) Begin(_ context.Context, userID uint) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.states[userID]; busy {
		return false, nil
	}
	t.states[userID] = model.TurnSendingUser
	return true, nil
}

func (t *MemoryTurnTracker) Advance(_ context.Context, userID uint, state model.TurnState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.states[userID]; busy {
		t.states[userID] = state
	}
	return nil
}

func (t *MemoryTurnTracker) End(_ context.Context, userID uint) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, userID)
	return nil
}

func (t *MemoryTurnTracker) State(_ context.Context, userID uint) (model.TurnState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.states[userID]; ok {
		return state, nil
	}
	return model.TurnIdle, nil
}
