package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"gopherai-insight/internal/model"
)

// HistoryCache holds a user's recent conversation log. While a message is on
// its way to the database a short-lived dirty marker is set and readers go
// straight to the database until the log has settled.
type HistoryCache struct {
	client         *redisv9.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL, dirtyMarkerTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &HistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

// Get returns the cached log. It misses while the dirty marker is set.
func (c *HistoryCache) Get(ctx context.Context, userID uint) ([]model.ChatMessage, bool, error) {
	var rawCmd *redisv9.StringCmd
	var dirtyCmd *redisv9.IntCmd
	_, err := c.client.Pipelined(ctx, func(pipe redisv9.Pipeliner) error {
		dirtyCmd = pipe.Exists(ctx, dirtyKey(userID))
		rawCmd = pipe.Get(ctx, historyKey(userID))
		return nil
	})
	if err != nil && err != redisv9.Nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}
	if dirtyCmd.Val() > 0 || rawCmd.Err() == redisv9.Nil {
		return nil, false, nil
	}

	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(rawCmd.Val()), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return messages, true, nil
}

// Set caches messages unless the log changed while they were being read.
func (c *HistoryCache) Set(ctx context.Context, userID uint, messages []model.ChatMessage) error {
	dirty, err := c.client.Exists(ctx, dirtyKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	if dirty > 0 {
		return nil
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, historyKey(userID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached log and marks it dirty in one round trip.
func (c *HistoryCache) Invalidate(ctx context.Context, userID uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.Set(ctx, dirtyKey(userID), "1", c.dirtyMarkerTTL)
		pipe.Del(ctx, historyKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate history failed: %w", err)
	}
	return nil
}

func historyKey(userID uint) string {
	return fmt.Sprintf("chat:history:%d", userID)
}

func dirtyKey(userID uint) string {
	return fmt.Sprintf("chat:history:dirty:%d", userID)
}
