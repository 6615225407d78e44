package daily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the well-known key holding the JSON-encoded entry list.
const DefaultKey = "daily_words"

// appendRetries bounds optimistic-transaction retries when two writers race.
const appendRetries = 3

// RedisLedger stores the ledger as a JSON array under a single key.
type RedisLedger struct {
	client *redis.Client
	key    string
}

// NewRedisLedger wires a Redis client into a ledger. An empty key uses DefaultKey.
func NewRedisLedger(client *redis.Client, key string) *RedisLedger {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	return &RedisLedger{client: client, key: key}
}

func (l *RedisLedger) Latest(ctx context.Context) (Entry, error) {
	entries, err := l.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrNoDailyWord
	}
	return entries[len(entries)-1], nil
}

func (l *RedisLedger) List(ctx context.Context) ([]Entry, error) {
	raw, err := l.client.Get(ctx, l.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get daily words: %w", err)
	}
	return decode(raw)
}

// Append adds e under WATCH so concurrent writers cannot drop each other's
// entries or publish twice for one date.
func (l *RedisLedger) Append(ctx context.Context, e Entry) error {
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, l.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get daily words: %w", err)
		}
		var entries []Entry
		if len(raw) > 0 {
			if entries, err = decode(raw); err != nil {
				return err
			}
		}
		if err := checkAppend(entries, e); err != nil {
			return err
		}
		data, err := json.Marshal(append(entries, e))
		if err != nil {
			return fmt.Errorf("encode daily words: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, l.key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < appendRetries; i++ {
		err := l.client.Watch(ctx, txf, l.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrDuplicateWord) && !errors.Is(err, ErrAlreadyPublished) {
			return fmt.Errorf("redis append daily word: %w", err)
		}
		return err
	}
	return fmt.Errorf("redis append daily word: %w", redis.TxFailedErr)
}

func decode(raw []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode daily words: %w", err)
	}
	return entries, nil
}
