package chatws

import (
	"encoding/json"
	"log"
	"time"
)

// typingSilence mirrors the client-side rule: a typer who goes quiet for this
// long is treated as having stopped.
const typingSilence = 1000 * time.Millisecond

type typingKey struct {
	conversationID int64
	userID         int64
}

type roomChange struct {
	client         *Client
	conversationID int64
	join           bool
}

// clientDeparture carries a snapshot of the connection's rooms so the hub
// never reads the client's joined map.
type clientDeparture struct {
	client *Client
	rooms  []int64
}

type roomBroadcast struct {
	conversationID int64
	exclude        *Client
	data           []byte
}

type typingSignal struct {
	client         *Client
	conversationID int64
	start          bool
}

// Hub owns all realtime state: connected clients, conversation room
// membership, and the typing timers. Everything is mutated from the single
// Run goroutine.
// typingState pairs the expiry timer with the typer so the stop broadcast
// can exclude them, same as an explicit typing_stop.
type typingState struct {
	timer  *time.Timer
	client *Client
}

type Hub struct {
	clients map[*Client]struct{}
	rooms   map[int64]map[*Client]struct{}

	register   chan *Client
	unregister chan clientDeparture
	room       chan roomChange
	broadcast  chan roomBroadcast
	typing     chan typingSignal

	typingTimers  chan typingKey
	activeTyping  map[typingKey]typingState
	typingSilence time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]struct{}),
		rooms:         make(map[int64]map[*Client]struct{}),
		register:      make(chan *Client),
		unregister:    make(chan clientDeparture),
		room:          make(chan roomChange),
		broadcast:     make(chan roomBroadcast, 64),
		typing:        make(chan typingSignal, 64),
		typingTimers:  make(chan typingKey, 64),
		activeTyping:  make(map[typingKey]typingState),
		typingSilence: typingSilence,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}

		case departure := <-h.unregister:
			if _, ok := h.clients[departure.client]; !ok {
				continue
			}
			delete(h.clients, departure.client)
			for _, conversationID := range departure.rooms {
				h.removeFromRoom(departure.client, conversationID)
			}
			// The departure is sent after ReadPump's last write, so nothing
			// enqueues on send past this point.
			close(departure.client.send)

		case change := <-h.room:
			if change.join {
				set, ok := h.rooms[change.conversationID]
				if !ok {
					set = make(map[*Client]struct{})
					h.rooms[change.conversationID] = set
				}
				set[change.client] = struct{}{}
			} else {
				h.removeFromRoom(change.client, change.conversationID)
			}

		case message := <-h.broadcast:
			h.deliver(message)

		case signal := <-h.typing:
			h.handleTyping(signal)

		case key := <-h.typingTimers:
			state, ok := h.activeTyping[key]
			if !ok {
				continue
			}
			delete(h.activeTyping, key)
			h.broadcastTyping(EventUserStoppedTyping, key, state.client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client, rooms []int64) {
	h.unregister <- clientDeparture{client: client, rooms: rooms}
}

func (h *Hub) JoinRoom(client *Client, conversationID int64) {
	h.room <- roomChange{client: client, conversationID: conversationID, join: true}
}

func (h *Hub) LeaveRoom(client *Client, conversationID int64) {
	h.room <- roomChange{client: client, conversationID: conversationID, join: false}
}

// BroadcastToConversation sends an event to every client joined to the
// conversation's room, the sender included: clients append their own messages
// on the broadcast, not on the ack.
func (h *Hub) BroadcastToConversation(conversationID int64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat hub: marshal event: %v", err)
		return
	}
	h.broadcast <- roomBroadcast{conversationID: conversationID, data: data}
}

func (h *Hub) Typing(client *Client, conversationID int64, start bool) {
	h.typing <- typingSignal{client: client, conversationID: conversationID, start: start}
}

func (h *Hub) deliver(message roomBroadcast) {
	set, ok := h.rooms[message.conversationID]
	if !ok {
		return
	}

	for client := range set {
		if message.exclude != nil && client == message.exclude {
			continue
		}
		select {
		case client.send <- message.data:
		default:
			h.removeFromRoom(client, message.conversationID)
		}
	}
}

func (h *Hub) handleTyping(signal typingSignal) {
	key := typingKey{conversationID: signal.conversationID, userID: signal.client.userID}

	if state, ok := h.activeTyping[key]; ok {
		state.timer.Stop()
		delete(h.activeTyping, key)
	}

	if !signal.start {
		h.broadcastTyping(EventUserStoppedTyping, key, signal.client)
		return
	}

	h.broadcastTyping(EventUserTyping, key, signal.client)
	timer := time.AfterFunc(h.typingSilence, func() {
		h.typingTimers <- key
	})
	h.activeTyping[key] = typingState{timer: timer, client: signal.client}
}

func (h *Hub) broadcastTyping(eventType string, key typingKey, exclude *Client) {
	event, err := NewEvent(eventType, TypingPayload{
		ConversationID: key.conversationID,
		UserID:         key.userID,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.deliver(roomBroadcast{conversationID: key.conversationID, exclude: exclude, data: data})
}

func (h *Hub) removeFromRoom(client *Client, conversationID int64) {
	set, ok := h.rooms[conversationID]
	if !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.rooms, conversationID)
	}
}
