package ws

import (
	"log"

	"github.com/vibehive/backend/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub. Every
// appended message re-syncs bound sessions with the full sequence and
// refreshes both participants' directories.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyConversationChanged(conv *domain.Conversation, participants []domain.Profile, messages []domain.ChatMessage) {
	sync, err := NewEvent(EventTypeSessionSync, &conv.ID, SessionSyncPayload{
		Conversation: *conv,
		Participants: participants,
		Messages:     messages,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToConversation(conv.ID, sync)

	updated, err := NewEvent(EventTypeConversationUpdated, &conv.ID, ConversationPayload{Conversation: *conv})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.BroadcastToUser(conv.UserA, updated)
	n.hub.BroadcastToUser(conv.UserB, updated)
}
