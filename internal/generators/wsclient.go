package generators

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSClient struct {
	conn   *websocket.Conn
	url    string
	logger *zap.Logger
	mutex  sync.Mutex
	done   chan struct{}
}

func dial(url string, auth string) (*websocket.Conn, error) {
	header := http.Header{}
	if auth != "" {
		header.Set("Authorization", auth)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	return conn, err
}

func NewWSClient(url string, auth string, logger *zap.Logger) (*WSClient, error) {
	conn, err := dial(url, auth)
	if err != nil {
		return nil, err
	}

	return &WSClient{
		conn:   conn,
		url:    url,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// SendMessage writes a text frame. Write failures go back to the caller,
// which redials with a new client.
func (c *WSClient) SendMessage(message []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Warn("websocket write failed", zap.String("url", c.url), zap.Error(err))
		return err
	}
	return nil
}

// ReadMessages forwards every frame to out until the connection fails, then
// closes out.
func (c *WSClient) ReadMessages(out chan<- []byte) {
	defer close(c.done)
	defer close(out)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read failed", zap.String("url", c.url), zap.Error(err))
			}
			return
		}
		out <- message
	}
}

func (c *WSClient) Close() error {
	c.mutex.Lock()
	err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mutex.Unlock()
	if err != nil {
		return c.conn.Close()
	}
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	return c.conn.Close()
}
