package session

import (
	"context"
	"sync"
)

// Registry maps user ids to their actors.
type Registry struct {
	cfg Config

	mu     sync.Mutex
	actors map[string]*actor
	closed bool
	wg     sync.WaitGroup
}

func NewRegistry(cfg Config) *Registry {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Registry{cfg: cfg, actors: make(map[string]*actor)}
}

// Init creates the user's profile on first contact. Later calls are no-ops,
// so the email recorded first is never replaced.
func (r *Registry) Init(ctx context.Context, id Identity) error {
	_, err := r.do(ctx, id.UserID, "init", func(ctx context.Context, a *actor) (string, error) {
		return "", a.init(ctx, id)
	})
	return err
}

// Guess submits a guess for today's word.
func (r *Registry) Guess(ctx context.Context, userID, word string) (string, error) {
	return r.do(ctx, userID, "guess", func(ctx context.Context, a *actor) (string, error) {
		return a.guess(ctx, word)
	})
}

// CurrentGame summarizes today's game.
func (r *Registry) CurrentGame(ctx context.Context, userID string) (string, error) {
	return r.do(ctx, userID, "current_game", func(ctx context.Context, a *actor) (string, error) {
		return a.currentGame(ctx)
	})
}

// Hint issues a paid hint or returns the payment link.
func (r *Registry) Hint(ctx context.Context, userID string) (string, error) {
	return r.do(ctx, userID, "hint", func(ctx context.Context, a *actor) (string, error) {
		return a.hint(ctx)
	})
}

// SetDisplayName sets the leaderboard name; "" restores the default.
func (r *Registry) SetDisplayName(ctx context.Context, userID, name string) error {
	_, err := r.do(ctx, userID, "set_display_name", func(ctx context.Context, a *actor) (string, error) {
		return "", a.setDisplayName(ctx, name)
	})
	return err
}

// SetHandle sets the external handle; "" clears it.
func (r *Registry) SetHandle(ctx context.Context, userID, handle string) error {
	_, err := r.do(ctx, userID, "set_handle", func(ctx context.Context, a *actor) (string, error) {
		return "", a.setHandle(ctx, handle)
	})
	return err
}

// Leaderboard renders the top standings and the caller's own as JSON text.
func (r *Registry) Leaderboard(ctx context.Context, userID string) (string, error) {
	return r.do(ctx, userID, "leaderboard", func(ctx context.Context, a *actor) (string, error) {
		return a.leaderboard(ctx)
	})
}

// Len reports the number of running actors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actors)
}

// Close stops every actor after its current turn and waits for them to exit.
// Commands not yet started fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id, a := range r.actors {
		close(a.quit)
		delete(r.actors, id)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// do runs fn as one turn of userID's actor. The turn runs on a context
// detached from ctx's cancellation; if ctx ends first the caller stops
// waiting but the turn still completes.
func (r *Registry) do(ctx context.Context, userID, name string, fn turn) (string, error) {
	a, err := r.acquire(userID)
	if err != nil {
		return "", err
	}

	cmd := command{
		name:  name,
		ctx:   context.WithoutCancel(ctx),
		fn:    fn,
		reply: make(chan reply, 1),
	}
	select {
	case a.inbox <- cmd:
	case <-a.done:
		return "", ErrClosed
	case <-ctx.Done():
		r.release(a)
		return "", ctx.Err()
	}

	select {
	case rep := <-cmd.reply:
		return rep.text, rep.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-a.done:
		select {
		case rep := <-cmd.reply:
			return rep.text, rep.err
		default:
			return "", ErrClosed
		}
	}
}

// acquire returns the user's actor, starting one if needed, and counts the
// caller as pending so the actor cannot retire before serving it.
func (r *Registry) acquire(userID string) (*actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	a, ok := r.actors[userID]
	if !ok {
		a = newActor(r, userID)
		r.actors[userID] = a
		r.wg.Add(1)
		go a.run()
		r.cfg.Metrics.ActorStarted()
	}
	a.pending++
	return a, nil
}

func (r *Registry) release(a *actor) {
	r.mu.Lock()
	a.pending--
	r.mu.Unlock()
}

// retire removes an idle actor with no pending commands.
func (r *Registry) retire(a *actor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.pending > 0 || r.closed {
		return false
	}
	if r.actors[a.userID] == a {
		delete(r.actors, a.userID)
	}
	return true
}
