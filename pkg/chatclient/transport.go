package chatclient

import (
	"context"
	"encoding/json"

	"nhooyr.io/websocket"
)

// WebsocketTransport dials the realtime endpoint over a plain websocket.
type WebsocketTransport struct {
	// HTTPHeader values are passed through to the handshake, used for the
	// Authorization header when the token is not in the query string.
	Options *websocket.DialOptions
}

func (t *WebsocketTransport) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.Dial(ctx, url, t.Options)
	if err != nil {
		return nil, err
	}
	return &websocketConn{conn: conn}, nil
}

type websocketConn struct {
	conn *websocket.Conn
}

func (c *websocketConn) ReadEvent(ctx context.Context) (*Event, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *websocketConn) WriteEvent(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *websocketConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
