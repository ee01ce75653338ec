package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"gopherai-insight/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create chat message failed: %w", err)
	}
	return nil
}

// ListByUserID returns the newest limit messages of a user in ascending
// creation order.
func (r *MessageRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	var messages []model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Publish writes msg straight to the database. It stands in for the queue
// publisher when no broker is configured.
func (r *MessageRepository) Publish(ctx context.Context, msg model.ChatMessage) error {
	return r.Create(ctx, &msg)
}
