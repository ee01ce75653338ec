package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"gopherai-insight/internal/model"
)

// TurnTracker stores the in-flight chat turn of each user in redis. The key
// expires after ttl so a crashed turn cannot block the user forever.
type TurnTracker struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewTurnTracker(client *redisv9.Client, ttl time.Duration) *TurnTracker {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &TurnTracker{client: client, ttl: ttl}
}

func (t *TurnTracker) Begin(ctx context.Context, userID uint) (bool, error) {
	ok, err := t.client.SetNX(ctx, turnKey(userID), string(model.TurnSendingUser), t.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim turn failed: %w", err)
	}
	return ok, nil
}

func (t *TurnTracker) Advance(ctx context.Context, userID uint, state model.TurnState) error {
	if err := t.client.SetXX(ctx, turnKey(userID), string(state), t.ttl).Err(); err != nil && err != redisv9.Nil {
		return fmt.Errorf("redis advance turn failed: %w", err)
	}
	return nil
}

func (t *TurnTracker) End(ctx context.Context, userID uint) error {
	if err := t.client.Del(ctx, turnKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis release turn failed: %w", err)
	}
	return nil
}

func (t *TurnTracker) State(ctx context.Context, userID uint) (model.TurnState, error) {
	raw, err := t.client.Get(ctx, turnKey(userID)).Result()
	if err == redisv9.Nil {
		return model.TurnIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get turn failed: %w", err)
	}
	state := model.TurnState(raw)
	if !state.Valid() {
		return model.TurnIdle, nil
	}
	return state, nil
}

func turnKey(userID uint) string {
	return fmt.Sprintf("chat:turn:%d", userID)
}
