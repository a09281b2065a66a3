package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Iron-Ham/callbridge/internal/bridge"
)

// Client issues requests to a Server over one websocket connection.
// Calls are serialized.
type Client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	nextID int
}

// Dial connects to the bridge at url (ws://host:port/path).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Call sends one request and waits for its response.
func (c *Client) Call(ctx context.Context, channel, method string, args bridge.Args) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := json.RawMessage(strconv.Itoa(c.nextID))

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
	}

	if err := c.conn.WriteJSON(Request{ID: id, Channel: channel, Method: method, Args: args}); err != nil {
		return Response{}, err
	}

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return Response{}, err
		}
		var resp Response
		if err := json.Unmarshal(frame, &resp); err != nil {
			return Response{}, fmt.Errorf("decode response: %w", err)
		}
		if string(resp.ID) == string(id) {
			return resp, nil
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
