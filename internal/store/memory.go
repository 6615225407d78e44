// internal/store/memory.go
//
// Durable per-user session state: the profile, the payment sub-state and
// the current game, saved by the session actor after every mutating turn.
//
// Implementations:
//   - memory (this file): map keyed by user id, lost on restart.
//   - Redis (redis.go): JSON document under user_game:{id}.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/game"
)

// ErrStateNotFound is returned by Load for users with no saved state.
var ErrStateNotFound = errors.New("store: session state not found")

// Profile is the user's identity and leaderboard presentation.
type Profile struct {
	ID          string  `json:"userId"`
	Email       string  `json:"email"`
	DisplayName string  `json:"username"`
	Handle      *string `json:"xHandle,omitempty"`
}

// Payment tracks the customer and the outstanding hint checkout, if any.
type Payment struct {
	CustomerID        string `json:"customerId,omitempty"`
	CheckoutSessionID string `json:"currentHintCheckoutSession,omitempty"`
}

// State is everything a session actor owns for one user.
type State struct {
	User    Profile    `json:"user"`
	Payment *Payment   `json:"stripe,omitempty"`
	Game    *game.Game `json:"game,omitempty"`
}

// StateStore persists session state between actor lifetimes.
type StateStore interface {
	// Load returns the saved state or ErrStateNotFound.
	Load(ctx context.Context, userID string) (*State, error)
	// Save replaces the saved state.
	Save(ctx context.Context, userID string, s *State) error
}

// memory is an in-memory StateStore. Values are stored encoded so callers
// never share pointers with the store.
type memory struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemoryStore constructs a new in-memory StateStore.
func NewMemoryStore() StateStore {
	return &memory{states: make(map[string][]byte)}
}

func (m *memory) Save(ctx context.Context, userID string, s *State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = raw
	return nil
}

func (m *memory) Load(ctx context.Context, userID string) (*State, error) {
	m.mu.RLock()
	raw, ok := m.states[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrStateNotFound
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
