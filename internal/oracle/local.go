package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/words"
)

// ErrLexiconExhausted means every dictionary word has already been used.
var ErrLexiconExhausted = errors.New("oracle: no unused words left in lexicon")

// Local is an offline oracle used when no model is configured. Words are drawn
// from a loaded lexicon and hints describe letter structure.
type Local struct {
	lexicon *words.Lexicon
	intn    func(int) int
}

func NewLocal(lexicon *words.Lexicon) *Local {
	return &Local{lexicon: lexicon, intn: rand.IntN}
}

func (l *Local) GenerateWord(ctx context.Context, exclude []string) (string, error) {
	used := make(map[string]struct{}, len(exclude))
	for _, w := range exclude {
		used[w] = struct{}{}
	}
	var pool []string
	for _, w := range l.lexicon.Words() {
		if _, ok := used[w]; !ok {
			pool = append(pool, w)
		}
	}
	if len(pool) == 0 {
		return "", ErrLexiconExhausted
	}
	return pool[l.intn(len(pool))], nil
}

// GenerateHint returns the first structural fact about word not already given.
func (l *Local) GenerateHint(ctx context.Context, word string, prior []string) (string, error) {
	given := make(map[string]struct{}, len(prior))
	for _, h := range prior {
		given[h] = struct{}{}
	}
	for _, h := range structuralHints(word) {
		if _, ok := given[h]; !ok {
			return h, nil
		}
	}
	return "", fmt.Errorf("oracle: no more hints for this word")
}

func structuralHints(word string) []string {
	vowels, unique, repeated := 0, 0, 0
	counts := map[rune]int{}
	for _, r := range word {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		}
		counts[r]++
	}
	for _, n := range counts {
		unique++
		if n > 1 {
			repeated++
		}
	}
	return []string{
		fmt.Sprintf("The word contains %s.", plural(vowels, "vowel")),
		fmt.Sprintf("The word is made of %s.", plural(unique, "distinct letter")),
		fmt.Sprintf("The word has %s.", plural(len(word)-vowels, "consonant")),
		fmt.Sprintf("The word has %s.", plural(repeated, "repeated letter")),
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
