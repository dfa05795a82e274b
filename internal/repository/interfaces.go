package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vibehive/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	Search(ctx context.Context, query string, limit int) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, username string) ([]domain.Conversation, error)
	// AppendMessage writes the message row and then the conversation's
	// last-message summary, in that order.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error
	ListMessages(ctx context.Context, conversationID string) ([]domain.ChatMessage, error)
}

type DiscussionRepository interface {
	Create(ctx context.Context, d *domain.Discussion) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Discussion, error)
	List(ctx context.Context) ([]domain.Discussion, error)
	IncrementLikes(ctx context.Context, id uuid.UUID) (int, error)
	// Delete removes the discussion and all of its comments atomically.
	Delete(ctx context.Context, id uuid.UUID) error
	CreateComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, discussionID uuid.UUID) ([]domain.Comment, error)
}
