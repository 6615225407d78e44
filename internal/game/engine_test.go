package game

import (
	"errors"
	"reflect"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		target string
		want   []Feedback
	}{
		{
			name:   "crane vs crime",
			guess:  "crane",
			target: "crime",
			want:   []Feedback{Correct, Correct, Absent, Absent, Correct},
		},
		{
			name:   "exact match",
			guess:  "alloy",
			target: "alloy",
			want:   []Feedback{Correct, Correct, Correct, Correct, Correct},
		},
		{
			name:   "lolly vs alloy duplicate letters",
			guess:  "lolly",
			target: "alloy",
			want:   []Feedback{Present, Present, Correct, Absent, Correct},
		},
		{
			name:   "no shared letters",
			guess:  "bumpy",
			target: "crane",
			want:   []Feedback{Absent, Absent, Absent, Absent, Absent},
		},
		{
			name:   "letter already consumed by exact match",
			guess:  "eerie",
			target: "crane",
			want:   []Feedback{Absent, Absent, Present, Absent, Correct},
		},
		{
			name:   "exact match consumes before present",
			guess:  "speed",
			target: "abide",
			want:   []Feedback{Absent, Absent, Present, Absent, Present},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.guess, tt.target)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Evaluate(%q, %q) = %v, want %v", tt.guess, tt.target, got, tt.want)
			}
		})
	}
}

// Positive marks for a letter never exceed that letter's count in the target.
func TestEvaluateDuplicateLetterLaw(t *testing.T) {
	pairs := [][2]string{
		{"lolly", "alloy"},
		{"llama", "alloy"},
		{"eerie", "crane"},
		{"geese", "elder"},
		{"aaaaa", "banal"},
	}
	for _, p := range pairs {
		guess, target := p[0], p[1]
		fb := Evaluate(guess, target)
		positives := map[byte]int{}
		for i := range fb {
			if fb[i] != Absent {
				positives[guess[i]]++
			}
		}
		for letter, n := range positives {
			inTarget := 0
			for i := 0; i < len(target); i++ {
				if target[i] == letter {
					inTarget++
				}
			}
			if n > inTarget {
				t.Errorf("%s vs %s: %d positive marks for %q, target has %d", guess, target, n, letter, inTarget)
			}
		}
	}
}

func TestRender(t *testing.T) {
	got := Render([]Feedback{Correct, Present, Absent, Absent, Correct})
	if got != "🟩🟨⬜⬜🟩" {
		t.Fatalf("Render = %q", got)
	}
}

func TestApplyGuessWin(t *testing.T) {
	g := New("id-1", "2025-01-01", "CRIME")
	a, err := g.ApplyGuess("Crane")
	if err != nil {
		t.Fatalf("ApplyGuess: %v", err)
	}
	if a.Guess != "crane" {
		t.Errorf("guess not lowercased: %q", a.Guess)
	}
	if g.Status != StatusActive {
		t.Fatalf("status = %s, want active", g.Status)
	}
	if _, err := g.ApplyGuess("crime"); err != nil {
		t.Fatalf("ApplyGuess: %v", err)
	}
	if g.Status != StatusWon {
		t.Fatalf("status = %s, want won", g.Status)
	}
	if _, err := g.ApplyGuess("crime"); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished, got %v", err)
	}
	if len(g.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(g.Attempts))
	}
}

func TestApplyGuessLossAndTerminalIdempotence(t *testing.T) {
	g := New("id-1", "2025-01-01", "crime")
	for i := 0; i < DefaultMaxAttempts; i++ {
		if _, err := g.ApplyGuess("bumpy"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if g.Status != StatusLost {
		t.Fatalf("status = %s, want lost", g.Status)
	}
	for i := 0; i < 3; i++ {
		if _, err := g.ApplyGuess("crime"); !errors.Is(err, ErrFinished) {
			t.Fatalf("expected ErrFinished, got %v", err)
		}
	}
	if len(g.Attempts) != DefaultMaxAttempts {
		t.Fatalf("attempts = %d, want %d", len(g.Attempts), DefaultMaxAttempts)
	}
	if g.Status != StatusLost {
		t.Fatalf("status changed after terminal: %s", g.Status)
	}
}

func TestApplyGuessRejectsBadShape(t *testing.T) {
	g := New("id-1", "2025-01-01", "crime")
	for _, s := range []string{"", "cran", "cranes", "cr4ne"} {
		if _, err := g.ApplyGuess(s); !errors.Is(err, ErrBadGuess) {
			t.Errorf("ApplyGuess(%q) = %v, want ErrBadGuess", s, err)
		}
	}
	if len(g.Attempts) != 0 {
		t.Fatalf("rejected guesses were recorded")
	}
}
