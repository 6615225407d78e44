package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "user_game:"

// RedisStateStore keeps each user's state as a JSON document.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func stateKey(userID string) string {
	return stateKeyPrefix + userID
}

func (r *RedisStateStore) Load(ctx context.Context, userID string) (*State, error) {
	raw, err := r.client.Get(ctx, stateKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("redis get session state: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &s, nil
}

func (r *RedisStateStore) Save(ctx context.Context, userID string, s *State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := r.client.Set(ctx, stateKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set session state: %w", err)
	}
	return nil
}
