package chatclient

import (
	"encoding/json"

	"github.com/Migueljuen/ItineraBack/internal/models"
)

// Event mirrors the server's websocket envelope.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	eventJoinConversation  = "join_conversation"
	eventLeaveConversation = "leave_conversation"
	eventSendMessage       = "send_message"
	eventTypingStart       = "typing_start"
	eventTypingStop        = "typing_stop"

	eventNewMessage        = "new_message"
	eventUserTyping        = "user_typing"
	eventUserStoppedTyping = "user_stopped_typing"
	eventSendAck           = "send_ack"
	eventError             = "error"
)

type conversationPayload struct {
	ConversationID int64 `json:"conversation_id"`
}

type sendMessagePayload struct {
	ConversationID int64  `json:"conversation_id"`
	Content        string `json:"content"`
	Nonce          string `json:"nonce,omitempty"`
}

// Ack is the server's answer to a send_message request.
type Ack struct {
	Nonce   string              `json:"nonce,omitempty"`
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Message *models.ChatMessage `json:"message,omitempty"`
}

// TypingEvent reports another participant starting or stopping typing.
type TypingEvent struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
	Typing         bool  `json:"-"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func newEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Type: eventType, Payload: data}, nil
}
