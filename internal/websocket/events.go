package chatws

import (
	"encoding/json"

	"github.com/Migueljuen/ItineraBack/internal/models"
)

// Client → server event types.
const (
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventSendMessage       = "send_message"
	EventTypingStart       = "typing_start"
	EventTypingStop        = "typing_stop"
)

// Server → client event types.
const (
	EventNewMessage        = "new_message"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventSendAck           = "send_ack"
	EventError             = "error"
)

// Event is the envelope for every websocket frame in either direction.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ConversationPayload struct {
	ConversationID int64 `json:"conversation_id"`
}

type SendMessagePayload struct {
	ConversationID int64  `json:"conversation_id"`
	Content        string `json:"content"`
	Nonce          string `json:"nonce,omitempty"`
}

// AckPayload answers a send_message request. Nonce echoes the client's value
// so the caller can match the ack to its request.
type AckPayload struct {
	Nonce   string              `json:"nonce,omitempty"`
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Message *models.ChatMessage `json:"message,omitempty"`
}

type NewMessagePayload struct {
	models.ChatMessage
}

type TypingPayload struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Type: eventType, Payload: data}, nil
}
