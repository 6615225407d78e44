package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/store"
)

type turn func(ctx context.Context, a *actor) (string, error)

type reply struct {
	text string
	err  error
}

type command struct {
	name  string
	ctx   context.Context
	fn    turn
	reply chan reply
}

// actor owns one user's state. Only its run goroutine touches state and dirty.
type actor struct {
	reg    *Registry
	userID string

	inbox chan command
	quit  chan struct{}
	done  chan struct{}

	// pending is guarded by reg.mu.
	pending int

	loaded bool
	state  *store.State
	dirty  bool
}

func newActor(r *Registry, userID string) *actor {
	return &actor{
		reg:    r,
		userID: userID,
		inbox:  make(chan command),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (a *actor) run() {
	defer func() {
		close(a.done)
		a.reg.cfg.Metrics.ActorStopped()
		a.reg.wg.Done()
	}()

	idle := time.NewTimer(a.reg.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case cmd := <-a.inbox:
			a.handle(cmd)
			a.reg.release(a)
			idle.Reset(a.reg.cfg.IdleTimeout)
		case <-idle.C:
			if a.reg.retire(a) {
				log.Debug().Str("user", a.userID).Msg("session actor retired")
				return
			}
			idle.Reset(a.reg.cfg.IdleTimeout)
		case <-a.quit:
			return
		}
	}
}

func (a *actor) handle(cmd command) {
	start := time.Now()
	text, err := a.exec(cmd)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Error().Err(err).Str("user", a.userID).Str("command", cmd.name).Msg("session command failed")
	}
	a.reg.cfg.Metrics.Command(cmd.name, outcome, time.Since(start))
	cmd.reply <- reply{text: text, err: err}
}

func (a *actor) exec(cmd command) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("session: panic in %s: %v", cmd.name, p)
		}
	}()

	if err := a.load(cmd.ctx); err != nil {
		return "", err
	}
	text, err = cmd.fn(cmd.ctx, a)
	if a.dirty {
		a.dirty = false
		// In-memory state stays authoritative while the actor lives.
		if serr := a.reg.cfg.States.Save(cmd.ctx, a.userID, a.state); serr != nil {
			log.Error().Err(serr).Str("user", a.userID).Str("command", cmd.name).Msg("persist session state failed")
		}
	}
	return text, err
}

// load reads persisted state once per actor lifetime.
func (a *actor) load(ctx context.Context) error {
	if a.loaded {
		return nil
	}
	s, err := a.reg.cfg.States.Load(ctx, a.userID)
	switch {
	case errors.Is(err, store.ErrStateNotFound):
	case err != nil:
		return fmt.Errorf("load session state: %w", err)
	default:
		a.state = s
	}
	a.loaded = true
	return nil
}

func (a *actor) requireUser() error {
	if a.state == nil || a.state.User.ID == "" {
		return ErrNotInitialized
	}
	return nil
}
