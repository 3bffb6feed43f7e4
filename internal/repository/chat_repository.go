package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/whatsapp-relay/internal/domain"
)

// ChatRepository persists the per-contact chat log.
type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// AppendMessage adds msg to the chat of shortID and bumps the chat's
// last_updated stamp, creating the chat when it does not exist yet.
func (r *ChatRepository) AppendMessage(ctx context.Context, shortID string, msg domain.ChatMessage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin chat transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	upsert := `
		INSERT INTO chats (short_id, last_updated)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE last_updated = VALUES(last_updated)
	`
	if _, err := tx.ExecContext(ctx, upsert, shortID, msg.Timestamp); err != nil {
		return fmt.Errorf("failed to upsert chat: %w", err)
	}

	insert := `
		INSERT INTO chat_messages (chat_id, direction, text, timestamp, is_read, type)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insert, shortID, msg.From, msg.Text, msg.Timestamp, msg.Read, msg.Type); err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat message: %w", err)
	}

	return nil
}

// RecentMessages returns up to limit of the newest messages of a chat in
// ascending time order.
func (r *ChatRepository) RecentMessages(ctx context.Context, shortID string, limit int) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, chat_id, direction, text, timestamp, is_read, type
		FROM chat_messages
		WHERE chat_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	messages := []domain.ChatMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, shortID, limit); err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
