package daily

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/mcp-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/mcp-server/internal/words"
)

// DefaultMaxAttempts bounds oracle calls per rotation.
const DefaultMaxAttempts = 5

// ErrWordGeneration is returned when no acceptable word was produced within the retry budget.
var ErrWordGeneration = errors.New("daily: failed to generate a new word")

// WordSource produces candidate secret words, avoiding the given history.
type WordSource interface {
	GenerateWord(ctx context.Context, exclude []string) (string, error)
}

// Rotator publishes one new ledger entry per calendar day.
type Rotator struct {
	// mu serializes rotations in this process; the ledger rejects a second
	// entry for a date across processes.
	mu sync.Mutex

	ledger      Ledger
	source      WordSource
	lexicon     *words.Lexicon
	maxAttempts int
	metrics     *metrics.Metrics
	now         func() time.Time
	newID       func() string
}

// NewRotator constructs a Rotator. maxAttempts <= 0 uses DefaultMaxAttempts;
// a nil lexicon accepts every well-shaped word.
func NewRotator(ledger Ledger, source WordSource, lexicon *words.Lexicon, maxAttempts int, m *metrics.Metrics) *Rotator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Rotator{
		ledger:      ledger,
		source:      source,
		lexicon:     lexicon,
		maxAttempts: maxAttempts,
		metrics:     m,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// Due reports whether the ledger has no entry for today yet.
func (r *Rotator) Due(ctx context.Context) (bool, error) {
	latest, err := r.ledger.Latest(ctx)
	if errors.Is(err, ErrNoDailyWord) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return latest.Date != DateKey(r.now()), nil
}

// Rotate publishes today's word. If the latest entry is already dated today it
// is returned with created=false and nothing is written.
//
// Candidates are trimmed and lowercased, then accepted only if they are 5 letters
// a–z, unused in the ledger, and allowed by the lexicon. After maxAttempts
// rejected candidates Rotate fails with ErrWordGeneration.
func (r *Rotator) Rotate(ctx context.Context) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.ledger.List(ctx)
	if err != nil {
		r.metrics.Rotation("failed")
		return Entry{}, false, err
	}
	today := DateKey(r.now())
	if n := len(entries); n > 0 && entries[n-1].Date == today {
		r.metrics.Rotation("skipped")
		return entries[n-1], false, nil
	}

	history := History(entries)
	used := make(map[string]struct{}, len(history))
	for _, w := range history {
		used[w] = struct{}{}
	}

	word := ""
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		candidate, err := r.source.GenerateWord(ctx, history)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("word generation call failed")
			continue
		}
		candidate = words.Normalize(candidate)
		if _, dup := used[candidate]; dup || !r.lexicon.Allows(candidate) {
			log.Debug().Str("candidate", candidate).Int("attempt", attempt).Msg("rejected candidate word")
			continue
		}
		word = candidate
		break
	}
	if word == "" {
		r.metrics.Rotation("failed")
		return Entry{}, false, ErrWordGeneration
	}

	e := Entry{GameID: r.newID(), Date: today, Word: word}
	if err := r.ledger.Append(ctx, e); err != nil {
		if errors.Is(err, ErrAlreadyPublished) {
			latest, lerr := r.ledger.Latest(ctx)
			if lerr != nil {
				r.metrics.Rotation("failed")
				return Entry{}, false, fmt.Errorf("read published daily word: %w", lerr)
			}
			r.metrics.Rotation("skipped")
			log.Info().Str("gameId", latest.GameID).Str("date", latest.Date).Msg("daily word published by another writer")
			return latest, false, nil
		}
		r.metrics.Rotation("failed")
		return Entry{}, false, fmt.Errorf("publish daily word: %w", err)
	}
	r.metrics.Rotation("created")
	log.Info().Str("gameId", e.GameID).Str("date", e.Date).Msg("new daily word published")
	return e, true, nil
}

// Schedule returns a stopped cron scheduler that runs Rotate on spec (UTC).
// The caller starts and stops it.
func (r *Rotator) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		if _, _, err := r.Rotate(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled daily word rotation failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse rotation schedule %q: %w", spec, err)
	}
	return c, nil
}
