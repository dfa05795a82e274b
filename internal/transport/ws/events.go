package ws

import (
	"encoding/json"
	"time"

	"github.com/vibehive/backend/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeSessionOpen  = "session.open"
	EventTypeSessionClose = "session.close"
	EventTypeCallStart    = "call.start"
	EventTypeCallEnd      = "call.end"
	EventTypePing         = "ping"
)

// Event types - Server → Client
const (
	EventTypeSessionSync         = "session.sync"
	EventTypeConversationUpdated = "conversation.updated"
	EventTypeCallStatus          = "call.status"
	EventTypePong                = "pong"
	EventTypeError               = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type           string          `json:"type"`
	ConversationID *string         `json:"conversation_id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Timestamp      int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type SessionOpenPayload struct {
	ConversationID string `json:"conversation_id"`
}

// --- Server → Client payloads ---

// SessionSyncPayload carries the full current state of a conversation. The
// client re-renders from scratch on every sync, so a delayed frame simply
// overwrites a stale one. Participants carries both profiles so the session
// header renders without a directory round trip.
type SessionSyncPayload struct {
	Conversation domain.Conversation  `json:"conversation"`
	Participants []domain.Profile     `json:"participants"`
	Messages     []domain.ChatMessage `json:"messages"`
}

// ConversationPayload refreshes one directory row: the updated summary.
type ConversationPayload struct {
	Conversation domain.Conversation `json:"conversation"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, conversationID *string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:           eventType,
		ConversationID: conversationID,
		Payload:        data,
		Timestamp:      time.Now().Unix(),
	}, nil
}
