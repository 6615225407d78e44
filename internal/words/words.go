// internal/words/words.go
//
// Word shape checks and the optional lexicon used to vet generated daily words.
//
// Responsibilities:
//   - Normalize candidate words (trim + lowercase).
//   - Check the shape of a word (exactly 5 letters a–z).
//   - Optionally restrict candidates to a dictionary file, one word per line.
//
// Lexicon behavior:
//   - Loaded from WORDS_ALLOWED_FILE when configured; invalid lines are skipped.
//   - With no file configured the lexicon is permissive and allows any
//     well-shaped word, leaving plausibility to the oracle.

package words

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// Length is the number of letters in every word of the game.
const Length = 5

// ErrEmptyLexicon is returned when a configured dictionary yields no words.
var ErrEmptyLexicon = errors.New("words: lexicon file has no valid words")

// Lexicon is a read-only set of allowed words. The zero value (or nil)
// allows every well-shaped word.
type Lexicon struct {
	set map[string]struct{}
}

// Load reads a lexicon from path. An empty path returns a permissive lexicon.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return &Lexicon{}, nil
	}
	list, err := readWordFile(path)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrEmptyLexicon
	}
	return &Lexicon{set: toSet(list)}, nil
}

// FromList builds a lexicon from an in-memory list, skipping invalid words.
func FromList(list []string) *Lexicon {
	var out []string
	for _, w := range list {
		w = Normalize(w)
		if Valid(w) {
			out = append(out, w)
		}
	}
	return &Lexicon{set: toSet(out)}
}

// Allows reports whether w is well shaped and, when a dictionary is loaded,
// present in it.
func (l *Lexicon) Allows(w string) bool {
	w = Normalize(w)
	if !Valid(w) {
		return false
	}
	if l == nil || l.set == nil {
		return true
	}
	_, ok := l.set[w]
	return ok
}

// Size returns the number of dictionary words, 0 for a permissive lexicon.
func (l *Lexicon) Size() int {
	if l == nil {
		return 0
	}
	return len(l.set)
}

// Words returns the dictionary words in no particular order.
func (l *Lexicon) Words() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.set))
	for w := range l.set {
		out = append(out, w)
	}
	return out
}

// Normalize trims whitespace and lowercases w.
func Normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// Valid reports whether w is exactly Length lowercase ASCII letters.
func Valid(w string) bool {
	return len(w) == Length && isAlpha(w)
}

// readWordFile loads one word per line from a file,
// lowercases, trims, and keeps only valid 5-letter alphabetic words.
// Lines starting with '#' are comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		w := Normalize(line)
		if Valid(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
