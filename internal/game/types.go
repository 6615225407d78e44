// internal/game/types.go
//
// Core type definitions for the daily Wordle game.
// Defines:
//   - Feedback: per-letter result of a guess (correct/present/absent).
//   - Attempt: one scored guess, immutable once created.
//   - Status: lifecycle of a game (active → won | lost).
//   - Game: one user's game bound to a single daily word.

package game

// Feedback represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the answer at this position.
//   - "present": letter is in the answer at a different position.
//   - "absent":  letter has no unconsumed occurrence left in the answer.
type Feedback string

const (
	Correct Feedback = "correct"
	Present Feedback = "present"
	Absent  Feedback = "absent"
)

// Status is the coarse state of a game. Transitions only go from
// StatusActive to StatusWon or StatusLost.
type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusLost   Status = "lost"
)

// Attempt is a single scored guess.
type Attempt struct {
	Guess    string     `json:"guess"`          // lowercased guess
	Feedback []Feedback `json:"feedback"`       // one entry per letter
	Visual   string     `json:"visualFeedback"` // rendered tiles, display only
}

// Game holds the state of a single user's daily game.
type Game struct {
	ID          string    `json:"gameId"`      // identifier of the bound daily word entry
	Date        string    `json:"date"`        // YYYY-MM-DD of the bound entry
	Target      string    `json:"targetWord"`  // the solution word (lowercase)
	Attempts    []Attempt `json:"attempts"`    // append-only, at most MaxAttempts
	MaxAttempts int       `json:"maxAttempts"` // always DefaultMaxAttempts for new games
	Status      Status    `json:"status"`
	Hints       []string  `json:"hints"` // previously issued hint texts, append-only
}

// Finished reports whether the game has reached a terminal status.
func (g *Game) Finished() bool { return g.Status != StatusActive }
