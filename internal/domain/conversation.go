package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversationKeySep joins the two sorted participant usernames into the
// conversation id, e.g. "alice_bob".
const ConversationKeySep = "_"

// ConversationID derives the deterministic id for a pair of participants.
// The pair is sorted first, so the id is the same regardless of argument order.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ConversationKeySep + b
}

// Conversation is a two-party message thread. UserA < UserB lexicographically;
// the id is always ConversationID(UserA, UserB). The LastMessage* fields are a
// denormalized summary of the newest message, all nil when the thread is empty.
type Conversation struct {
	ID                string     `json:"id"`
	UserA             string     `json:"user_a"`
	UserB             string     `json:"user_b"`
	LastMessageText   *string    `json:"last_message_text,omitempty"`
	LastMessageSender *string    `json:"last_message_sender,omitempty"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// HasParticipant reports whether username is one of the two participants.
func (c *Conversation) HasParticipant(username string) bool {
	return c.UserA == username || c.UserB == username
}

// Counterpart returns the other participant's username.
func (c *Conversation) Counterpart(username string) string {
	if c.UserA == username {
		return c.UserB
	}
	return c.UserA
}

// ChatMessage is one immutable entry in a conversation. Sender is the author's
// username; ordering within a conversation is CreatedAt ascending.
type ChatMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}
