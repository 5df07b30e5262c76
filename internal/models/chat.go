package models

import "time"

type Conversation struct {
	ID         int64     `json:"id"`
	TravelerID int64     `json:"traveler_id"`
	PartnerID  int64     `json:"partner_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type Participant struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
}

type ConversationSummary struct {
	Conversation
	Participants []Participant `json:"participants"`
	LastMessage  *ChatMessage  `json:"last_message,omitempty"`
	UnreadCount  int           `json:"unread_count"`
}
