package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/game"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/store"
)

const (
	msgNewGameOnGuess = "A new word and game has been started. You have 6 attempts to guess the word. " +
		"Your current guess does not count towards the new game. You may submit a new guess for the new word."
	msgNewGameOnSummary = "A new word and game has been started. " +
		"You may make a new guess for the new word before getting your current game information."
	msgWon  = "Congratulations! You've guessed the word in %d attempts."
	msgLost = "Game over! You have used all your attempts for today's word."
)

// reconcile binds the held game to the ledger's latest entry.
//
// With no game held a fresh one is created and it is not reported stale.
// A held game bound to an older entry is stale: without override it is
// returned untouched; with override it is replaced, and an abandoned active
// game with at least one attempt is scored as a loss first.
func (a *actor) reconcile(ctx context.Context, override bool) (*game.Game, bool, error) {
	latest, err := a.reg.cfg.Ledger.Latest(ctx)
	if err != nil {
		return nil, false, err
	}

	held := a.state.Game
	if held == nil {
		a.state.Game = game.New(latest.GameID, latest.Date, latest.Word)
		a.dirty = true
		return a.state.Game, false, nil
	}
	if held.ID == latest.GameID {
		return held, false, nil
	}
	if !override {
		return held, true, nil
	}

	if held.Status == game.StatusActive {
		a.recordResult(held)
	}
	a.state.Game = game.New(latest.GameID, latest.Date, latest.Word)
	a.dirty = true
	log.Debug().Str("user", a.userID).Str("gameId", latest.GameID).Msg("new daily game started")
	return a.state.Game, true, nil
}

func (a *actor) guess(ctx context.Context, word string) (string, error) {
	if err := a.requireUser(); err != nil {
		return "", err
	}
	g, stale, err := a.reconcile(ctx, true)
	if err != nil {
		return "", err
	}
	if stale {
		return msgNewGameOnGuess, nil
	}
	if g.Finished() {
		return fmt.Sprintf("Today's game is already %s. Try again tomorrow.", g.Status), nil
	}

	at, err := g.ApplyGuess(word)
	if err != nil {
		return "", err
	}
	a.dirty = true

	n := len(g.Attempts)
	var b strings.Builder
	fmt.Fprintf(&b, "Guess %d/%d: %s\n%s\n\n", n, g.MaxAttempts, strings.ToUpper(at.Guess), at.Visual)
	switch g.Status {
	case game.StatusWon:
		fmt.Fprintf(&b, msgWon, n)
	case game.StatusLost:
		b.WriteString(msgLost)
	}

	if g.Finished() {
		a.reg.cfg.Metrics.GameFinished(string(g.Status))
		a.recordResult(g)
	}
	return b.String(), nil
}

func (a *actor) currentGame(ctx context.Context) (string, error) {
	if err := a.requireUser(); err != nil {
		return "", err
	}
	g, stale, err := a.reconcile(ctx, false)
	if err != nil {
		return "", err
	}
	if stale {
		return msgNewGameOnSummary, nil
	}

	lines := make([]string, 0, len(g.Attempts))
	for _, at := range g.Attempts {
		lines = append(lines, strings.ToUpper(at.Guess)+": "+at.Visual)
	}
	return fmt.Sprintf("Today's Challenge (%s)\nStatus: %s\nAttempts: %d/%d\n\n%s",
		g.Date, g.Status, len(g.Attempts), g.MaxAttempts, strings.Join(lines, "\n")), nil
}

// recordResult schedules the stats upsert for g. The result is captured now
// so later changes to the actor's state cannot alter it. Games without
// attempts are not scored; a game still active counts as a loss.
func (a *actor) recordResult(g *game.Game) {
	if len(g.Attempts) == 0 {
		return
	}
	res := store.Result{
		UserID:  a.userID,
		Won:     g.Status == game.StatusWon,
		Guesses: len(g.Attempts),
		Hints:   len(g.Hints),
	}
	stats := a.reg.cfg.Stats
	a.reg.cfg.Background.Go("record_stats", func(ctx context.Context) error {
		return stats.RecordResult(ctx, res)
	})
}
