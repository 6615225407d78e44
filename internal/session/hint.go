package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/game"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/store"
)

// hintAttempts bounds regeneration when the oracle's hint fails local checks.
const hintAttempts = 3

const (
	msgNewGameOnHint = "A new word and game has been started. Your current request for a hint does not count " +
		"towards the new game. You may make a new guess for the new word before requesting a hint."
	msgPayForHint = "Please open this the following link to pay to receive a hint: %s. Show the link to the user."
)

// hint issues one hint per completed payment.
//
// The outstanding checkout is cleared in the same turn the hint is appended,
// so a single payment can never yield two hints. If hint generation fails
// after payment the checkout is kept and the next request retries for free.
func (a *actor) hint(ctx context.Context) (string, error) {
	if err := a.requireUser(); err != nil {
		return "", err
	}
	g, stale, err := a.reconcile(ctx, false)
	if err != nil {
		return "", err
	}
	if stale {
		return msgNewGameOnHint, nil
	}
	if g.Finished() {
		return fmt.Sprintf("Game is already %s.", g.Status), nil
	}

	paid, link, err := a.requirePayment(ctx)
	if err != nil {
		return "", err
	}
	if !paid {
		return fmt.Sprintf(msgPayForHint, link), nil
	}

	h, err := a.generateHint(ctx, g)
	if err != nil {
		return "", err
	}
	g.Hints = append(g.Hints, h)
	a.state.Payment.CheckoutSessionID = ""
	a.dirty = true
	a.reg.cfg.Metrics.HintIssued()
	return "Hint: " + h, nil
}

// requirePayment reports whether the outstanding checkout is paid. When it is
// not (or none exists) a new checkout is created and its link returned.
func (a *actor) requirePayment(ctx context.Context) (bool, string, error) {
	gw := a.reg.cfg.Payments
	if a.state.Payment == nil {
		a.state.Payment = &store.Payment{}
	}
	p := a.state.Payment

	if p.CheckoutSessionID != "" {
		paid, err := gw.CheckoutPaid(ctx, p.CheckoutSessionID)
		if err != nil {
			return false, "", err
		}
		if paid {
			return true, "", nil
		}
	}

	if p.CustomerID == "" {
		id, err := a.customerID(ctx)
		if err != nil {
			return false, "", err
		}
		p.CustomerID = id
		a.dirty = true
	}

	co, err := gw.CreateCheckout(ctx, p.CustomerID)
	if err != nil {
		return false, "", err
	}
	p.CheckoutSessionID = co.ID
	a.dirty = true
	a.reg.cfg.Metrics.CheckoutCreated()
	return false, co.URL, nil
}

// customerID finds the gateway customer for the user's email or creates one.
func (a *actor) customerID(ctx context.Context) (string, error) {
	gw := a.reg.cfg.Payments
	email := a.state.User.Email
	id, found, err := gw.FindCustomer(ctx, email)
	if err != nil {
		return "", err
	}
	if found {
		return id, nil
	}
	return gw.CreateCustomer(ctx, email)
}

// generateHint asks the oracle for a hint, collapsing it to one line and
// rejecting any that reveal the secret word.
func (a *actor) generateHint(ctx context.Context, g *game.Game) (string, error) {
	for i := 1; i <= hintAttempts; i++ {
		h, err := a.reg.cfg.Hints.GenerateHint(ctx, g.Target, g.Hints)
		if err != nil {
			return "", fmt.Errorf("generate hint: %w", err)
		}
		h = strings.Join(strings.Fields(h), " ")
		if h != "" && !strings.Contains(strings.ToLower(h), g.Target) {
			return h, nil
		}
		log.Warn().Str("user", a.userID).Int("attempt", i).Msg("generated hint rejected")
	}
	return "", ErrHintRejected
}
