package chatws

import (
	"context"
	"encoding/json"

	"github.com/Migueljuen/ItineraBack/internal/services"
	websocket "github.com/gofiber/contrib/websocket"
)

type sender interface {
	SendMessage(
		ctx context.Context,
		actorID int64,
		role string,
		conversationID int64,
		content string,
	) (*services.ChatDelivery, error)
	EnsureParticipant(ctx context.Context, actorID int64, conversationID int64) error
}

// wsConn is the slice of *websocket.Conn the client needs.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	hub    *Hub
	conn   wsConn
	userID int64

	// joined tracks this connection's room memberships. Only the ReadPump
	// goroutine touches it; the hub gets a snapshot on unregister.
	joined map[int64]struct{}

	send chan []byte
}

func NewClient(hub *Hub, conn wsConn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		joined: make(map[int64]struct{}),
		send:   make(chan []byte, 32),
	}
}

func (c *Client) ReadPump(service sender, role string) {
	defer func() {
		rooms := make([]int64, 0, len(c.joined))
		for conversationID := range c.joined {
			rooms = append(rooms, conversationID)
		}
		c.hub.Unregister(c, rooms)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			c.writeError("invalid event payload")
			continue
		}

		switch event.Type {
		case EventJoinConversation:
			c.handleJoin(service, event.Payload)
		case EventLeaveConversation:
			c.handleLeave(event.Payload)
		case EventSendMessage:
			c.handleSend(service, role, event.Payload)
		case EventTypingStart, EventTypingStop:
			c.handleTyping(event.Type, event.Payload)
		default:
			c.writeError("unsupported event type")
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) handleJoin(service sender, payload json.RawMessage) {
	var req ConversationPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ConversationID <= 0 {
		c.writeError("invalid conversation id")
		return
	}

	if err := service.EnsureParticipant(context.Background(), c.userID, req.ConversationID); err != nil {
		c.writeError("cannot join conversation")
		return
	}

	c.joined[req.ConversationID] = struct{}{}
	c.hub.JoinRoom(c, req.ConversationID)
}

func (c *Client) handleLeave(payload json.RawMessage) {
	var req ConversationPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ConversationID <= 0 {
		c.writeError("invalid conversation id")
		return
	}

	delete(c.joined, req.ConversationID)
	c.hub.LeaveRoom(c, req.ConversationID)
}

func (c *Client) handleSend(service sender, role string, payload json.RawMessage) {
	var req SendMessagePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ConversationID <= 0 {
		c.writeError("invalid message payload")
		return
	}

	delivery, err := service.SendMessage(
		context.Background(),
		c.userID,
		role,
		req.ConversationID,
		req.Content,
	)
	if err != nil {
		c.writeAck(AckPayload{Nonce: req.Nonce, Success: false, Error: "failed to send message"})
		return
	}

	c.writeAck(AckPayload{Nonce: req.Nonce, Success: true, Message: delivery.Message})

	event, err := NewEvent(EventNewMessage, NewMessagePayload{ChatMessage: *delivery.Message})
	if err != nil {
		return
	}
	c.hub.BroadcastToConversation(req.ConversationID, event)
}

func (c *Client) handleTyping(eventType string, payload json.RawMessage) {
	var req TypingPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ConversationID <= 0 {
		c.writeError("invalid typing payload")
		return
	}
	if _, ok := c.joined[req.ConversationID]; !ok {
		c.writeError("not joined to conversation")
		return
	}

	c.hub.Typing(c, req.ConversationID, eventType == EventTypingStart)
}

func (c *Client) writeAck(ack AckPayload) {
	event, err := NewEvent(EventSendAck, ack)
	if err != nil {
		return
	}
	c.enqueue(event)
}

func (c *Client) writeError(message string) {
	event, err := NewEvent(EventError, ErrorPayload{Message: message})
	if err != nil {
		return
	}
	c.enqueue(event)
}

func (c *Client) enqueue(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer. Closing the socket makes the next read fail, which
		// tears the connection down through the normal unregister path; the
		// send channel stays open until then.
		_ = c.conn.Close()
	}
}
