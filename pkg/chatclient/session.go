package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Migueljuen/ItineraBack/internal/models"
	"github.com/google/uuid"
)

// Conn is a single established websocket connection.
type Conn interface {
	ReadEvent(ctx context.Context) (*Event, error)
	WriteEvent(ctx context.Context, event *Event) error
	Close() error
}

// Transport dials the realtime endpoint. The default implementation lives in
// transport.go; tests substitute their own.
type Transport interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

var ErrNotConnected = errors.New("chatclient: not connected")

// Session tracks which conversations the caller wants to be in,
// independently of whether a connection currently exists. Joins made while
// offline are replayed on the next successful Connect, so the server's room
// state always converges to the joined set.
type Session struct {
	transport Transport
	url       string

	mu        sync.Mutex
	conn      Conn
	joined    map[int64]struct{}
	acks      map[string]func(Ack)
	onMessage func(models.ChatMessage)
	onTyping  func(TypingEvent)
	onError   func(error)
}

func NewSession(transport Transport, url string) *Session {
	return &Session{
		transport: transport,
		url:       url,
		joined:    make(map[int64]struct{}),
		acks:      make(map[string]func(Ack)),
	}
}

// OnMessage sets the new-message handler. There is one slot per event type;
// setting a handler replaces the previous one, and nil clears it.
func (s *Session) OnMessage(handler func(models.ChatMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMessage = handler
}

func (s *Session) OnTyping(handler func(TypingEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTyping = handler
}

func (s *Session) OnError(handler func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = handler
}

// Connect establishes the websocket connection and replays every joined
// conversation. Calling it while connected is a no-op. Dial failures are
// reported through the error handler as well as returned, so fire-and-forget
// callers still observe them.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	transport := s.transport
	url := s.url
	s.mu.Unlock()

	conn, err := transport.Dial(ctx, url)
	if err != nil {
		s.reportError(err)
		return err
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	s.conn = conn
	joined := make([]int64, 0, len(s.joined))
	for id := range s.joined {
		joined = append(joined, id)
	}
	s.mu.Unlock()

	for _, id := range joined {
		if err := s.writeEvent(ctx, eventJoinConversation, conversationPayload{ConversationID: id}); err != nil {
			s.reportError(err)
		}
	}

	go s.readLoop(ctx, conn)
	return nil
}

// Disconnect closes the connection and forgets the joined set, matching a
// deliberate logout rather than a dropped connection.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.joined = make(map[int64]struct{})
	s.acks = make(map[string]func(Ack))
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// JoinConversation always records the membership; the join event is only
// emitted when a connection exists, otherwise Connect replays it later.
func (s *Session) JoinConversation(ctx context.Context, conversationID int64) error {
	s.mu.Lock()
	s.joined[conversationID] = struct{}{}
	connected := s.conn != nil
	s.mu.Unlock()

	if !connected {
		return nil
	}
	return s.writeEvent(ctx, eventJoinConversation, conversationPayload{ConversationID: conversationID})
}

func (s *Session) LeaveConversation(ctx context.Context, conversationID int64) error {
	s.mu.Lock()
	delete(s.joined, conversationID)
	connected := s.conn != nil
	s.mu.Unlock()

	if !connected {
		return nil
	}
	return s.writeEvent(ctx, eventLeaveConversation, conversationPayload{ConversationID: conversationID})
}

// SendMessage emits a send_message event tagged with a fresh nonce. The ack
// callback fires once when the server answers with the matching nonce.
func (s *Session) SendMessage(ctx context.Context, conversationID int64, content string, ack func(Ack)) error {
	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return ErrNotConnected
	}
	nonce := uuid.NewString()
	if ack != nil {
		s.acks[nonce] = ack
	}
	s.mu.Unlock()

	err := s.writeEvent(ctx, eventSendMessage, sendMessagePayload{
		ConversationID: conversationID,
		Content:        content,
		Nonce:          nonce,
	})
	if err != nil {
		s.mu.Lock()
		delete(s.acks, nonce)
		s.mu.Unlock()
	}
	return err
}

// StartTyping emits typing_start. Most callers want TypingNotifier instead,
// which also handles the silence timeout.
func (s *Session) StartTyping(ctx context.Context, conversationID int64) error {
	return s.sendTyping(ctx, conversationID, true)
}

// StopTyping emits typing_stop.
func (s *Session) StopTyping(ctx context.Context, conversationID int64) error {
	return s.sendTyping(ctx, conversationID, false)
}

func (s *Session) sendTyping(ctx context.Context, conversationID int64, start bool) error {
	s.mu.Lock()
	connected := s.conn != nil
	s.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	eventType := eventTypingStop
	if start {
		eventType = eventTypingStart
	}
	return s.writeEvent(ctx, eventType, conversationPayload{ConversationID: conversationID})
}

func (s *Session) writeEvent(ctx context.Context, eventType string, payload any) error {
	event, err := newEvent(eventType, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteEvent(ctx, event)
}

func (s *Session) readLoop(ctx context.Context, conn Conn) {
	for {
		event, err := conn.ReadEvent(ctx)
		if err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			s.reportError(err)
			return
		}
		s.dispatch(event)
	}
}

func (s *Session) dispatch(event *Event) {
	switch event.Type {
	case eventNewMessage:
		var message models.ChatMessage
		if err := json.Unmarshal(event.Payload, &message); err != nil {
			s.reportError(err)
			return
		}
		s.mu.Lock()
		handler := s.onMessage
		s.mu.Unlock()
		if handler != nil {
			handler(message)
		}

	case eventUserTyping, eventUserStoppedTyping:
		var typing TypingEvent
		if err := json.Unmarshal(event.Payload, &typing); err != nil {
			s.reportError(err)
			return
		}
		typing.Typing = event.Type == eventUserTyping
		s.mu.Lock()
		handler := s.onTyping
		s.mu.Unlock()
		if handler != nil {
			handler(typing)
		}

	case eventSendAck:
		var ack Ack
		if err := json.Unmarshal(event.Payload, &ack); err != nil {
			s.reportError(err)
			return
		}
		s.mu.Lock()
		callback := s.acks[ack.Nonce]
		delete(s.acks, ack.Nonce)
		s.mu.Unlock()
		if callback != nil {
			callback(ack)
		}

	case eventError:
		var payload errorPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			s.reportError(err)
			return
		}
		s.reportError(errors.New("chatclient: server error: " + payload.Message))
	}
}

func (s *Session) reportError(err error) {
	s.mu.Lock()
	handler := s.onError
	s.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}
