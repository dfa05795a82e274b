package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vibehive/backend/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *fakeUserRepo) Search(_ context.Context, query string, limit int) ([]domain.User, error) {
	all, _ := r.List(context.Background())
	var out []domain.User
	for _, u := range all {
		if len(out) == limit {
			break
		}
		q := strings.ToLower(query)
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

type fakeChatRepo struct {
	convs map[string]*domain.Conversation
	msgs  map[string][]domain.ChatMessage

	listMessagesErr error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		convs: make(map[string]*domain.Conversation),
		msgs:  make(map[string][]domain.ChatMessage),
	}
}

func (r *fakeChatRepo) CreateConversation(_ context.Context, conv *domain.Conversation) error {
	if _, ok := r.convs[conv.ID]; ok {
		return nil
	}
	copied := *conv
	r.convs[conv.ID] = &copied
	return nil
}

func (r *fakeChatRepo) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, nil
	}
	copied := *conv
	return &copied, nil
}

func (r *fakeChatRepo) ListConversations(_ context.Context, username string) ([]domain.Conversation, error) {
	// Map iteration order is deliberately arbitrary, like an unordered store.
	var convs []domain.Conversation
	for _, conv := range r.convs {
		if conv.UserA == username || conv.UserB == username {
			convs = append(convs, *conv)
		}
	}
	return convs, nil
}

func (r *fakeChatRepo) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	r.msgs[msg.ConversationID] = append(r.msgs[msg.ConversationID], *msg)
	conv := r.convs[msg.ConversationID]
	conv.LastMessageText = &msg.Text
	conv.LastMessageSender = &msg.Sender
	conv.LastMessageAt = &msg.CreatedAt
	return nil
}

func (r *fakeChatRepo) ListMessages(_ context.Context, conversationID string) ([]domain.ChatMessage, error) {
	if r.listMessagesErr != nil {
		return nil, r.listMessagesErr
	}
	msgs := r.msgs[conversationID]
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeDiscussionRepo struct {
	discussions map[uuid.UUID]*domain.Discussion
	comments    map[uuid.UUID][]domain.Comment
}

func newFakeDiscussionRepo() *fakeDiscussionRepo {
	return &fakeDiscussionRepo{
		discussions: make(map[uuid.UUID]*domain.Discussion),
		comments:    make(map[uuid.UUID][]domain.Comment),
	}
}

func (r *fakeDiscussionRepo) Create(_ context.Context, d *domain.Discussion) error {
	copied := *d
	r.discussions[d.ID] = &copied
	return nil
}

func (r *fakeDiscussionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Discussion, error) {
	d, ok := r.discussions[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDiscussionRepo) List(_ context.Context) ([]domain.Discussion, error) {
	var out []domain.Discussion
	for _, d := range r.discussions {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeDiscussionRepo) IncrementLikes(_ context.Context, id uuid.UUID) (int, error) {
	d, ok := r.discussions[id]
	if !ok {
		return 0, nil
	}
	d.Likes++
	return d.Likes, nil
}

func (r *fakeDiscussionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.discussions, id)
	delete(r.comments, id)
	return nil
}

func (r *fakeDiscussionRepo) CreateComment(_ context.Context, c *domain.Comment) error {
	r.comments[c.DiscussionID] = append(r.comments[c.DiscussionID], *c)
	if d, ok := r.discussions[c.DiscussionID]; ok {
		d.CommentCount++
	}
	return nil
}

func (r *fakeDiscussionRepo) ListComments(_ context.Context, discussionID uuid.UUID) ([]domain.Comment, error) {
	out := make([]domain.Comment, len(r.comments[discussionID]))
	copy(out, r.comments[discussionID])
	return out, nil
}

type recordingNotifier struct {
	conversations []domain.Conversation
	participants  [][]domain.Profile
	sequences     [][]domain.ChatMessage
}

func (n *recordingNotifier) NotifyConversationChanged(conv *domain.Conversation, participants []domain.Profile, messages []domain.ChatMessage) {
	n.conversations = append(n.conversations, *conv)
	n.participants = append(n.participants, participants)
	n.sequences = append(n.sequences, messages)
}
