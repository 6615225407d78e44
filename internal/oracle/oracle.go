// Package oracle produces daily words and hints for a secret word.
package oracle

import "context"

// Oracle is a source of candidate daily words and hints.
type Oracle interface {
	// GenerateWord proposes a word not in exclude. The result is unvetted.
	GenerateWord(ctx context.Context, exclude []string) (string, error)
	// GenerateHint describes word without repeating any of prior.
	GenerateHint(ctx context.Context, word string, prior []string) (string, error)
}

var (
	_ Oracle = (*OpenAI)(nil)
	_ Oracle = (*Local)(nil)
)
