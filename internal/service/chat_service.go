package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vibehive/backend/internal/domain"
	"github.com/vibehive/backend/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrCannotChatSelf       = errors.New("cannot start a conversation with yourself")
	ErrUserNotFound         = errors.New("user not found")
)

const (
	// previewLength is the rune budget for a directory preview before the
	// ellipsis kicks in.
	previewLength = 30

	emptyPreview     = "No messages yet"
	deletedUserLabel = "Deleted user"
)

// Notifier pushes realtime updates after a message lands. Implemented by the
// ws hub notifier; set after wiring to break the construction cycle.
type Notifier interface {
	NotifyConversationChanged(conv *domain.Conversation, participants []domain.Profile, messages []domain.ChatMessage)
}

type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	notifier Notifier
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// DirectoryEntry is one row of a user's conversation list: the conversation,
// the resolved counterpart, and a short preview of the newest message.
type DirectoryEntry struct {
	Conversation domain.Conversation `json:"conversation"`
	Counterpart  domain.Profile      `json:"counterpart"`
	Preview      string              `json:"preview"`
}

// SessionView is everything a chat session renders: the conversation header,
// both participants' profiles, and the full ordered message sequence.
type SessionView struct {
	Conversation domain.Conversation  `json:"conversation"`
	Counterpart  domain.Profile       `json:"counterpart"`
	Participants []domain.Profile     `json:"participants"`
	Messages     []domain.ChatMessage `json:"messages"`
}

// ResolveOrCreate finds the conversation between two users, creating it if
// absent. The id is deterministic over the sorted pair, so calling with the
// arguments in either order resolves to the same conversation.
func (s *ChatService) ResolveOrCreate(ctx context.Context, username, otherUsername string) (*domain.Conversation, error) {
	if username == otherUsername {
		return nil, ErrCannotChatSelf
	}

	other, err := s.userRepo.GetByUsername(ctx, otherUsername)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	id := domain.ConversationID(username, otherUsername)

	conv, err := s.chatRepo.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	a, b := username, otherUsername
	if b < a {
		a, b = b, a
	}
	conv = &domain.Conversation{
		ID:        id,
		UserA:     a,
		UserB:     b,
		CreatedAt: time.Now(),
	}

	if err := s.chatRepo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	return conv, nil
}

// ListConversations returns the user's chat directory, newest activity first.
// A counterpart whose account is gone degrades to a placeholder entry rather
// than failing the whole listing.
func (s *ChatService) ListConversations(ctx context.Context, username string) ([]DirectoryEntry, error) {
	convs, err := s.chatRepo.ListConversations(ctx, username)
	if err != nil {
		return nil, err
	}

	entries := lo.Map(convs, func(conv domain.Conversation, _ int) DirectoryEntry {
		return DirectoryEntry{
			Conversation: conv,
			Counterpart:  s.resolveProfile(ctx, conv.Counterpart(username)),
			Preview:      preview(conv.LastMessageText),
		}
	})
	return entries, nil
}

// SendMessage appends a message to a conversation the sender participates in.
// Text that trims to empty is a silent no-op. The message row is written
// before the conversation summary, then the realtime layer is told to re-sync
// every bound session with the full current sequence.
func (s *ChatService) SendMessage(ctx context.Context, sender, conversationID, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	conv, err := s.participantConversation(ctx, sender, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		CreatedAt:      time.Now(),
	}

	if err := s.chatRepo.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	conv.LastMessageText = &msg.Text
	conv.LastMessageSender = &msg.Sender
	conv.LastMessageAt = &msg.CreatedAt

	if s.notifier != nil {
		messages, err := s.chatRepo.ListMessages(ctx, conversationID)
		if err != nil {
			// The message is already durable; a failed re-read only costs
			// this realtime push.
			log.Printf("ERROR chat notify: %v", err)
		} else {
			s.notifier.NotifyConversationChanged(conv, s.participantProfiles(ctx, conv), messages)
		}
	}

	return msg, nil
}

// SessionSnapshot is the participant-checked full state of one conversation:
// what a chat session renders on open and on every re-sync.
func (s *ChatService) SessionSnapshot(ctx context.Context, username, conversationID string) (*SessionView, error) {
	conv, err := s.participantConversation(ctx, username, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	return &SessionView{
		Conversation: *conv,
		Counterpart:  s.resolveProfile(ctx, conv.Counterpart(username)),
		Participants: s.participantProfiles(ctx, conv),
		Messages:     messages,
	}, nil
}

func (s *ChatService) participantConversation(ctx context.Context, username, conversationID string) (*domain.Conversation, error) {
	conv, err := s.chatRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(username) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func (s *ChatService) resolveProfile(ctx context.Context, username string) domain.Profile {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return domain.Profile{Username: username, DisplayName: deletedUserLabel}
	}
	return user.Profile()
}

// participantProfiles resolves both participants, in UserA, UserB order.
func (s *ChatService) participantProfiles(ctx context.Context, conv *domain.Conversation) []domain.Profile {
	return []domain.Profile{
		s.resolveProfile(ctx, conv.UserA),
		s.resolveProfile(ctx, conv.UserB),
	}
}

func preview(text *string) string {
	if text == nil {
		return emptyPreview
	}
	runes := []rune(*text)
	if len(runes) <= previewLength {
		return *text
	}
	return string(runes[:previewLength]) + "…"
}
