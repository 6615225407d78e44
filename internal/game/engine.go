// internal/game/engine.go
//
// Core game engine for a single daily Wordle game.
// Responsibilities:
//   - Create new games bound to a daily word (6 attempts x 5 letters).
//   - Apply guesses and track state transitions: active → won/lost.
//   - Score guesses using the classic two-pass Wordle algorithm.
//   - Render feedback as emoji tiles for display.
//
// Notes:
//   - Guess shape (5 letters a–z) is validated by the calling boundary;
//     ApplyGuess only lowercases and re-checks length as a guard.
package game

import (
	"errors"
	"strings"
)

const (
	DefaultMaxAttempts = 6
	WordLength         = 5
)

var (
	// ErrFinished is returned when a guess is applied to a won or lost game.
	ErrFinished = errors.New("game: already finished")
	// ErrBadGuess is returned when a guess is not WordLength ASCII letters.
	ErrBadGuess = errors.New("game: guess must be 5 letters")
)

// New constructs an active game bound to the daily word identified by id.
func New(id, date, target string) *Game {
	return &Game{
		ID:          id,
		Date:        date,
		Target:      strings.ToLower(target),
		Attempts:    []Attempt{},
		MaxAttempts: DefaultMaxAttempts,
		Status:      StatusActive,
		Hints:       []string{},
	}
}

// ApplyGuess scores a guess and appends it as an Attempt, mutating the game.
//
// State transitions:
//   - guess == target                → StatusWon.
//   - attempts reach g.MaxAttempts   → StatusLost.
//
// A finished game is never mutated; ErrFinished is returned instead.
func (g *Game) ApplyGuess(guess string) (Attempt, error) {
	if g.Finished() {
		return Attempt{}, ErrFinished
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if len(guess) != WordLength || !isAlpha(guess) {
		return Attempt{}, ErrBadGuess
	}

	fb := Evaluate(guess, g.Target)
	a := Attempt{Guess: guess, Feedback: fb, Visual: Render(fb)}
	g.Attempts = append(g.Attempts, a)

	if guess == g.Target {
		g.Status = StatusWon
	} else if len(g.Attempts) >= g.MaxAttempts {
		g.Status = StatusLost
	}
	return a, nil
}

// Evaluate implements the standard Wordle two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) target letters.
//
// Pass 2:
//   - For each non-correct guess letter: if an unconsumed occurrence remains,
//     mark Present and consume it; otherwise mark Absent.
//
// A letter that appears once in the target but twice in the guess therefore
// yields exactly one positive mark.
func Evaluate(guess, target string) []Feedback {
	n := len(target)
	res := make([]Feedback, n)
	if len(guess) != n {
		for i := range res {
			res[i] = Absent
		}
		return res
	}

	// Letter frequency for the non-correct target positions (a–z).
	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			res[i] = Correct
		} else if j := idx(target[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == Correct {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && counts[j] > 0 {
			res[i] = Present
			counts[j]--
		} else {
			res[i] = Absent
		}
	}
	return res
}

// Render maps feedback to one tile per letter.
func Render(fb []Feedback) string {
	var b strings.Builder
	for _, f := range fb {
		switch f {
		case Correct:
			b.WriteString("🟩")
		case Present:
			b.WriteString("🟨")
		default:
			b.WriteString("⬜")
		}
	}
	return b.String()
}

// idx maps a lowercase ASCII letter to 0..25, or -1 for anything else.
func idx(c byte) int {
	if c < 'a' || c > 'z' {
		return -1
	}
	return int(c - 'a')
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
