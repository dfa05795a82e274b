package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vibehive/backend/internal/domain"
)

func newTestUser(username string) *domain.User {
	now := time.Now()
	return &domain.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: strings.ToUpper(username[:1]) + username[1:],
		Role:        domain.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newChatFixture(usernames ...string) (*ChatService, *fakeChatRepo, *fakeUserRepo) {
	users := make([]*domain.User, len(usernames))
	for i, name := range usernames {
		users[i] = newTestUser(name)
	}
	chatRepo := newFakeChatRepo()
	userRepo := newFakeUserRepo(users...)
	return NewChatService(chatRepo, userRepo), chatRepo, userRepo
}

func TestResolveOrCreate_OrderIndependent(t *testing.T) {
	svc, repo, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	first, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, "alice_bob", first.ID)
	require.Equal(t, "alice", first.UserA)
	require.Equal(t, "bob", first.UserB)

	second, err := svc.ResolveOrCreate(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.convs, 1)
}

func TestResolveOrCreate_Rejections(t *testing.T) {
	svc, _, _ := newChatFixture("alice")
	ctx := context.Background()

	_, err := svc.ResolveOrCreate(ctx, "alice", "alice")
	require.ErrorIs(t, err, ErrCannotChatSelf)

	_, err = svc.ResolveOrCreate(ctx, "alice", "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendMessage_AppendsAndUpdatesSummary(t *testing.T) {
	svc, repo, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	msg, err := svc.SendMessage(ctx, "alice", conv.ID, "hello")
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Equal(t, "hello", msg.Text)
	require.Equal(t, "alice", msg.Sender)

	stored, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessageText)
	require.Equal(t, "hello", *stored.LastMessageText)
	require.Equal(t, "alice", *stored.LastMessageSender)

	messages, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", messages[len(messages)-1].Text)
}

func TestSendMessage_BlankTextIsNoOp(t *testing.T) {
	svc, repo, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		msg, err := svc.SendMessage(ctx, "alice", conv.ID, text)
		require.NoError(t, err)
		require.Nil(t, msg)
	}

	require.Empty(t, repo.msgs[conv.ID])
	stored, _ := repo.GetConversation(ctx, conv.ID)
	require.Nil(t, stored.LastMessageText)
}

func TestSendMessage_ParticipantChecks(t *testing.T) {
	svc, _, _ := newChatFixture("alice", "bob", "mallory")
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, "mallory", conv.ID, "hi there")
	require.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.SendMessage(ctx, "alice", "no_such", "hi")
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSendMessage_NotifiesWithFullSequence(t *testing.T) {
	svc, _, _ := newChatFixture("alice", "bob")
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, "alice", conv.ID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "bob", conv.ID, "two")
	require.NoError(t, err)

	require.Len(t, notifier.sequences, 2)
	// Every notification carries the complete ordered sequence so far.
	require.Len(t, notifier.sequences[0], 1)
	require.Len(t, notifier.sequences[1], 2)
	require.Equal(t, "one", notifier.sequences[1][0].Text)
	require.Equal(t, "two", notifier.sequences[1][1].Text)
	require.Equal(t, "two", *notifier.conversations[1].LastMessageText)

	// Both participants' profiles travel with every notification.
	require.Len(t, notifier.participants[0], 2)
	require.Equal(t, "alice", notifier.participants[0][0].Username)
	require.Equal(t, "bob", notifier.participants[0][1].Username)
}

func TestSendMessage_NotifyFailureDoesNotFailSend(t *testing.T) {
	svc, repo, _ := newChatFixture("alice", "bob")
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	repo.listMessagesErr = errors.New("store unavailable")
	msg, err := svc.SendMessage(ctx, "alice", conv.ID, "hello")
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Empty(t, notifier.sequences)

	// The message itself landed.
	repo.listMessagesErr = nil
	messages, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "hello", messages[0].Text)
}

func TestListConversations_FiltersByParticipant(t *testing.T) {
	svc, _, _ := newChatFixture("alice", "bob", "carol")
	ctx := context.Background()

	_, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = svc.ResolveOrCreate(ctx, "bob", "carol")
	require.NoError(t, err)

	entries, err := svc.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "alice_bob", entries[0].Conversation.ID)
	require.Equal(t, "bob", entries[0].Counterpart.Username)

	entries, err = svc.ListConversations(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestListConversations_PreviewAndScenario(t *testing.T) {
	svc, _, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, "alice_bob", conv.ID)

	entries, err := svc.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "No messages yet", entries[0].Preview)

	_, err = svc.SendMessage(ctx, "alice", conv.ID, "hi")
	require.NoError(t, err)

	entries, err = svc.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "hi", entries[0].Preview)
	require.Equal(t, "bob", entries[0].Counterpart.Username)
}

func TestListConversations_PreviewTruncation(t *testing.T) {
	svc, _, _ := newChatFixture("alice", "bob")
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	exactly30 := strings.Repeat("x", 30)
	_, err = svc.SendMessage(ctx, "alice", conv.ID, exactly30)
	require.NoError(t, err)

	entries, _ := svc.ListConversations(ctx, "alice")
	require.Equal(t, exactly30, entries[0].Preview)

	_, err = svc.SendMessage(ctx, "alice", conv.ID, exactly30+"overflow")
	require.NoError(t, err)

	entries, _ = svc.ListConversations(ctx, "alice")
	require.Equal(t, exactly30+"…", entries[0].Preview)
}

func TestListConversations_DeletedCounterpartPlaceholder(t *testing.T) {
	svc, _, userRepo := newChatFixture("alice", "bob")
	ctx := context.Background()

	_, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	bob, err := userRepo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NoError(t, userRepo.Delete(ctx, bob.ID))

	entries, err := svc.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Deleted user", entries[0].Counterpart.DisplayName)
	require.Equal(t, "bob", entries[0].Counterpart.Username)
}

func TestSessionSnapshot(t *testing.T) {
	svc, _, _ := newChatFixture("alice", "bob", "mallory")
	ctx := context.Background()

	conv, err := svc.ResolveOrCreate(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, "alice", conv.ID, "first")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "bob", conv.ID, "second")
	require.NoError(t, err)

	view, err := svc.SessionSnapshot(ctx, "alice", conv.ID)
	require.NoError(t, err)
	require.Equal(t, "bob", view.Counterpart.Username)
	require.Len(t, view.Participants, 2)
	require.Equal(t, "alice", view.Participants[0].Username)
	require.Equal(t, "bob", view.Participants[1].Username)
	require.Len(t, view.Messages, 2)
	require.Equal(t, "first", view.Messages[0].Text)
	require.Equal(t, "second", view.Messages[1].Text)

	_, err = svc.SessionSnapshot(ctx, "mallory", conv.ID)
	require.ErrorIs(t, err, ErrNotParticipant)
}
