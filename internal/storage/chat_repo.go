package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_store.go -package=mocks maturamente-ai/internal/storage ChatStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ChatStore defines the interface for conversation history.
type ChatStore interface {
	// CreateChat starts a new conversation for userID.
	CreateChat(ctx context.Context, userID string) (*ChatRecord, error)
	// GetChat returns ErrNotFound when the chat does not exist.
	GetChat(ctx context.Context, id string) (*ChatRecord, error)
	// AppendMessage adds a message at the end of the chat. Returns ErrNotFound for an unknown chat.
	AppendMessage(ctx context.Context, msg *MessageRecord) error
	// ListRecentMessages returns up to limit latest messages, oldest first.
	ListRecentMessages(ctx context.Context, chatID string, limit int) ([]MessageRecord, error)
}

// ChatRepo implements ChatStore on SQLite.
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo creates a new ChatRepo.
func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateChat starts a new conversation.
func (r *ChatRepo) CreateChat(ctx context.Context, userID string) (*ChatRecord, error) {
	id := uuid.New().String()
	if _, err := r.db.ExecContext(ctx, "INSERT INTO chats (id, user_id) VALUES (?, ?)", id, userID); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return r.GetChat(ctx, id)
}

// GetChat returns the chat with id.
func (r *ChatRepo) GetChat(ctx context.Context, id string) (*ChatRecord, error) {
	var (
		chat      ChatRecord
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at FROM chats WHERE id = ?", id,
	).Scan(&chat.ID, &chat.UserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}

	chat.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &chat, nil
}

// AppendMessage adds msg after the chat's last message and sets its ID.
func (r *ChatRepo) AppendMessage(ctx context.Context, msg *MessageRecord) error {
	if _, err := r.GetChat(ctx, msg.ChatID); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, role, content, seq)
		 SELECT ?, ?, ?, ?, COALESCE(MAX(seq), 0) + 1 FROM messages WHERE chat_id = ?`,
		msg.ID, msg.ChatID, msg.Role, msg.Content, msg.ChatID,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListRecentMessages returns up to limit latest messages, oldest first.
func (r *ChatRepo) ListRecentMessages(ctx context.Context, chatID string, limit int) ([]MessageRecord, error) {
	if limit <= 0 {
		return []MessageRecord{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, chat_id, role, content, created_at FROM (
			SELECT id, chat_id, role, content, created_at, seq FROM messages
			WHERE chat_id = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []MessageRecord{}
	for rows.Next() {
		var (
			msg       MessageRecord
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if msg.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}
