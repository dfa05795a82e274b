package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/vibehive/backend/internal/service"
)

// SessionLoader resolves the full participant-checked state of a conversation
// for one user. Implemented by service.ChatService.
type SessionLoader interface {
	SessionSnapshot(ctx context.Context, username, conversationID string) (*service.SessionView, error)
}

// Hub manages all active WebSocket clients and routes events to them.
type Hub struct {
	// clients maps username → client. One connection per user.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg

	chats SessionLoader
}

// broadcastMsg targets either every client bound to a conversation or one
// named user.
type broadcastMsg struct {
	conversationID string
	username       string
	data           []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// SetChats wires the session loader after construction.
func (h *Hub) SetChats(chats SessionLoader) {
	h.chats = chats
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.username] = client
			log.Printf("ws hub: user %s connected (%d total)", client.username, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client.username]; ok {
				delete(h.clients, client.username)
				client.sim.End()
				close(client.done)
				log.Printf("ws hub: user %s disconnected (%d total)", client.username, len(h.clients))
			}

		case msg := <-h.broadcast:
			if msg.username != "" {
				if client, ok := h.clients[msg.username]; ok {
					h.deliver(client, msg.data)
				}
				continue
			}
			for _, client := range h.clients {
				// Only clients whose bound session is this conversation.
				if !client.BoundTo(msg.conversationID) {
					continue
				}
				h.deliver(client, msg.data)
			}
		}
	}
}

// BroadcastToConversation sends an event to every client whose active session
// is bound to the conversation.
func (h *Hub) BroadcastToConversation(conversationID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.broadcast <- &broadcastMsg{
		conversationID: conversationID,
		data:           data,
	}
}

// BroadcastToUser sends an event directly to a specific user, if connected.
func (h *Hub) BroadcastToUser(username string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.broadcast <- &broadcastMsg{
		username: username,
		data:     data,
	}
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Client buffer full - disconnect. The send channel stays open so
		// the read side can keep writing into the void; the pumps exit via
		// done.
		delete(h.clients, client.username)
		client.sim.End()
		close(client.done)
	}
}
