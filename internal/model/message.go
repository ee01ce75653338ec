package model

import "time"

// ChatMessage is one immutable turn of a user's conversation log.
type ChatMessage struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         uint      `gorm:"not null;index:idx_chat_user_created,priority:1" json:"user_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsUser         bool      `gorm:"not null" json:"is_user"`
	DatasetContext *string   `gorm:"size:256" json:"dataset_context,omitempty"`
	CreatedAt      time.Time `gorm:"index:idx_chat_user_created,priority:2" json:"created_at"`
}
