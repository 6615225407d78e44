// internal/session/session.go
//
// Per-user game session actors.
//
// Every user has at most one actor: a goroutine that owns the user's profile,
// payment sub-state and current game, and processes that user's commands one
// at a time in arrival order. The Registry routes commands to actors, starts
// them lazily and retires idle ones.
//
// Each turn:
//   - reconciles the held game against the latest daily word,
//   - applies the command and returns a human-readable text,
//   - persists the state if it changed,
//   - hands best-effort side effects (stats upserts) to the Background pool.

package session

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/daily"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/payment"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/store"
)

// DefaultIdleTimeout retires actors that have not seen a command for this long.
const DefaultIdleTimeout = 30 * time.Minute

var (
	// ErrNotInitialized is returned for commands from a user with no profile.
	ErrNotInitialized = errors.New("session: user not initialized")
	// ErrClosed is returned once the registry has shut down.
	ErrClosed = errors.New("session: registry closed")
	// ErrHintRejected is returned when every generated hint failed the local checks.
	ErrHintRejected = errors.New("session: no acceptable hint generated")
)

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// HintSource generates hints for a secret word, avoiding the prior ones.
type HintSource interface {
	GenerateHint(ctx context.Context, word string, prior []string) (string, error)
}

// Stats is the relational store of profiles and lifetime counters.
type Stats interface {
	EnsureUser(ctx context.Context, u store.User) error
	GetUser(ctx context.Context, id string) (store.User, error)
	SetDisplayName(ctx context.Context, id, name string) error
	SetHandle(ctx context.Context, id string, handle *string) error
	RecordResult(ctx context.Context, r store.Result) error
	Leaderboard(ctx context.Context, userID string) (store.Leaderboard, error)
}

// Config wires an actor's collaborators.
type Config struct {
	Ledger     daily.Ledger
	States     store.StateStore
	Stats      Stats
	Payments   payment.Gateway
	Hints      HintSource
	Background *Background
	Metrics    *metrics.Metrics
	// IdleTimeout <= 0 uses DefaultIdleTimeout.
	IdleTimeout time.Duration
}
