package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vibehive/backend/internal/domain"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	// ON CONFLICT keeps resolve-or-create idempotent when two clients race
	// on the same deterministic id.
	query := `
		INSERT INTO conversations (id, user_a, user_b, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, conv.ID, conv.UserA, conv.UserB, conv.CreatedAt)
	return err
}

func (r *ChatRepo) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
		SELECT id, user_a, user_b, last_message_text, last_message_sender, last_message_at, created_at
		FROM conversations
		WHERE id = $1`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.UserA, &conv.UserB,
		&conv.LastMessageText, &conv.LastMessageSender, &conv.LastMessageAt,
		&conv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}

func (r *ChatRepo) ListConversations(ctx context.Context, username string) ([]domain.Conversation, error) {
	query := `
		SELECT id, user_a, user_b, last_message_text, last_message_sender, last_message_at, created_at
		FROM conversations
		WHERE user_a = $1 OR user_b = $1
		ORDER BY COALESCE(last_message_at, created_at) DESC`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.UserA, &conv.UserB,
			&conv.LastMessageText, &conv.LastMessageSender, &conv.LastMessageAt,
			&conv.CreatedAt,
		); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// AppendMessage inserts the message row first and updates the conversation
// summary second. The summary can go stale on a crash between the two
// statements but can never reference a message that was not written.
func (r *ChatRepo) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	insert := `
		INSERT INTO chat_messages (id, conversation_id, sender, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, insert,
		msg.ID, msg.ConversationID, msg.Sender, msg.Text, msg.CreatedAt,
	); err != nil {
		return err
	}

	update := `
		UPDATE conversations
		SET last_message_text = $1, last_message_sender = $2, last_message_at = $3
		WHERE id = $4`
	_, err := r.pool.Exec(ctx, update, msg.Text, msg.Sender, msg.CreatedAt, msg.ConversationID)
	return err
}

func (r *ChatRepo) ListMessages(ctx context.Context, conversationID string) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, conversation_id, sender, text, created_at
		FROM chat_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.Sender, &msg.Text, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
