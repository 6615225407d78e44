// internal/daily/daily.go
//
// The daily word ledger: an append-only list of (gameId, date, word) entries,
// one per calendar day. The last entry is always today's word.
//
// The ledger is written only by the Rotator (scheduled or manual trigger) and
// read by session actors during reconciliation.

package daily

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrNoDailyWord means the ledger has no entries; no game command can run.
	ErrNoDailyWord = errors.New("daily: no daily word found")
	// ErrDuplicateWord is returned when appending a word already in the ledger.
	ErrDuplicateWord = errors.New("daily: word already used")
	// ErrAlreadyPublished is returned when appending a second entry for a date.
	ErrAlreadyPublished = errors.New("daily: word already published for this date")
)

// Entry is one day's secret word.
type Entry struct {
	GameID string `json:"gameId"`
	Date   string `json:"date"`
	Word   string `json:"word"`
}

// Ledger is the shared daily word sequence.
type Ledger interface {
	// Latest returns today's entry, or ErrNoDailyWord when the ledger is empty.
	Latest(ctx context.Context) (Entry, error)
	// List returns every entry in publication order.
	List(ctx context.Context) ([]Entry, error)
	// Append publishes a new entry as the latest one.
	Append(ctx context.Context, e Entry) error
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// History returns the words of every entry, oldest first.
func History(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Word)
	}
	return out
}

// MemoryLedger is an in-process Ledger used in development and tests.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryLedger returns a ledger seeded with entries (oldest first).
func NewMemoryLedger(entries ...Entry) *MemoryLedger {
	return &MemoryLedger{entries: append([]Entry(nil), entries...)}
}

func (m *MemoryLedger) Latest(ctx context.Context) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.entries) == 0 {
		return Entry{}, ErrNoDailyWord
	}
	return m.entries[len(m.entries)-1], nil
}

func (m *MemoryLedger) List(ctx context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries...), nil
}

func (m *MemoryLedger) Append(ctx context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkAppend(m.entries, e); err != nil {
		return err
	}
	m.entries = append(m.entries, e)
	return nil
}

// checkAppend rejects e when its date already has an entry or its word was used.
func checkAppend(entries []Entry, e Entry) error {
	if n := len(entries); n > 0 && entries[n-1].Date == e.Date {
		return ErrAlreadyPublished
	}
	for _, have := range entries {
		if have.Word == e.Word {
			return ErrDuplicateWord
		}
	}
	return nil
}
