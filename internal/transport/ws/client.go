package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/vibehive/backend/internal/call"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection. A client holds at most one
// bound conversation session at a time; binding a new one detaches the old
// one, so stale callbacks can never accumulate.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	username string

	// session is the bound conversation id, "" when none.
	session string
	mu      sync.RWMutex

	sim *call.Simulator

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, username string) *Client {
	c := &Client{
		hub:      hub,
		conn:     conn,
		username: username,
		send:     make(chan []byte, sendBufSize),
		done:     make(chan struct{}),
	}
	c.sim = call.NewSimulator(call.SystemClock{}, c.pushCallStatus)
	return c
}

// BoundTo reports whether this client's active session is the conversation.
func (c *Client) BoundTo(conversationID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session == conversationID && c.session != ""
}

// Bind makes conversationID the client's single active session, detaching any
// previous one.
func (c *Client) Bind(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = conversationID
}

// Unbind detaches the active session, if any.
func (c *Client) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = ""
}

// ReadPump reads events from the WebSocket and handles them.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.username)
			} else {
				log.Printf("ws: read error from %s: %v", c.username, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.username, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.username, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeSessionOpen:
		var p SessionOpenPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ConversationID == "" {
			c.sendError("INVALID_PAYLOAD", "invalid session.open payload")
			return
		}
		c.openSession(p.ConversationID)

	case EventTypeSessionClose:
		c.Unbind()

	case EventTypeCallStart:
		c.sim.Start()

	case EventTypeCallEnd:
		c.sim.End()

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// openSession binds the client to a conversation and pushes the full current
// message sequence. A failed participant check leaves any previous binding
// untouched.
func (c *Client) openSession(conversationID string) {
	view, err := c.hub.chats.SessionSnapshot(context.Background(), c.username, conversationID)
	if err != nil {
		c.sendError("SESSION_DENIED", "cannot open session: "+err.Error())
		return
	}

	c.Bind(conversationID)
	log.Printf("ws: %s opened session %s", c.username, conversationID)

	evt, err := NewEvent(EventTypeSessionSync, &conversationID, SessionSyncPayload{
		Conversation: view.Conversation,
		Participants: view.Participants,
		Messages:     view.Messages,
	})
	if err != nil {
		return
	}
	c.push(evt)
}

func (c *Client) pushCallStatus(status call.Status) {
	evt, err := NewEvent(EventTypeCallStatus, nil, status)
	if err != nil {
		return
	}
	c.push(evt)
}

func (c *Client) push(evt *Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.push(evt)
}
