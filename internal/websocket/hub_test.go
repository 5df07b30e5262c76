package chatws

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Migueljuen/ItineraBack/internal/services"
	websocket "github.com/gofiber/contrib/websocket"
)

type fakeSocket struct {
	frames chan []byte

	mu     sync.Mutex
	closed bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{frames: make(chan []byte, 8)}
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	data, ok := <-s.frames
	if !ok {
		return 0, nil, io.EOF
	}
	return websocket.TextMessage, data, nil
}

func (s *fakeSocket) WriteMessage(int, []byte) error {
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type stubWSService struct{}

func (stubWSService) SendMessage(context.Context, int64, string, int64, string) (*services.ChatDelivery, error) {
	return nil, services.ErrForbidden
}

func (stubWSService) EnsureParticipant(context.Context, int64, int64) error {
	return nil
}

func mustEvent(t *testing.T, eventType string, payload any) []byte {
	t.Helper()
	event, err := NewEvent(eventType, payload)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return data
}

func recvEvent(t *testing.T, ch chan []byte) Event {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatal("send channel closed while waiting for an event")
		}
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an event")
	}
	return Event{}
}

func waitClosed(t *testing.T, ch chan []byte) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send channel never closed")
		}
	}
}

func TestSlowConsumerDropsConnectionWithoutClosingSend(t *testing.T) {
	hub := NewHub()
	sock := newFakeSocket()
	client := NewClient(hub, sock, 3)

	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte(`{}`)
	}
	client.writeError("backpressure")

	if !sock.isClosed() {
		t.Fatal("expected a full send buffer to close the socket")
	}
	select {
	case _, ok := <-client.send:
		if !ok {
			t.Fatal("send channel must stay open until the hub processes the unregister")
		}
	default:
		t.Fatal("expected buffered frames to remain readable")
	}
}

func TestDisconnectRemovesJoinedRoomsAndClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sock := newFakeSocket()
	leaver := NewClient(hub, sock, 9)
	hub.Register(leaver)

	stayer := NewClient(hub, newFakeSocket(), 10)
	hub.Register(stayer)
	hub.JoinRoom(stayer, 7)

	done := make(chan struct{})
	go func() {
		leaver.ReadPump(stubWSService{}, "traveler")
		close(done)
	}()

	sock.frames <- mustEvent(t, EventJoinConversation, ConversationPayload{ConversationID: 7})
	close(sock.frames)
	<-done

	waitClosed(t, leaver.send)

	event, err := NewEvent(EventNewMessage, NewMessagePayload{})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	hub.BroadcastToConversation(7, event)

	if got := recvEvent(t, stayer.send); got.Type != EventNewMessage {
		t.Fatalf("expected new_message for the remaining member, got %q", got.Type)
	}
}

func TestTypingExpiryExcludesTyper(t *testing.T) {
	hub := NewHub()
	hub.typingSilence = 20 * time.Millisecond
	go hub.Run()

	typer := NewClient(hub, newFakeSocket(), 1)
	watcher := NewClient(hub, newFakeSocket(), 2)
	hub.Register(typer)
	hub.Register(watcher)
	hub.JoinRoom(typer, 5)
	hub.JoinRoom(watcher, 5)

	hub.Typing(typer, 5, true)

	if got := recvEvent(t, watcher.send); got.Type != EventUserTyping {
		t.Fatalf("expected user_typing, got %q", got.Type)
	}
	if got := recvEvent(t, watcher.send); got.Type != EventUserStoppedTyping {
		t.Fatalf("expected user_stopped_typing after silence, got %q", got.Type)
	}

	select {
	case data := <-typer.send:
		t.Fatalf("typer must not receive their own typing events, got %s", data)
	default:
	}
}
