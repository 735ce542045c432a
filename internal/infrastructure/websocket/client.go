package websocket

import (
	"github.com/gorilla/websocket"

	"github.com/vuquangminhpe/eb/pkg/logger"
)

// ReadPump reads frames from the connection and feeds them to the gateway.
// One goroutine per connection, so a single connection's events are processed
// strictly in send order.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Disconnect(c)
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error: %v", err)
			}
			break
		}

		m.HandleClientMessage(c, data)
	}
}

// WritePump drains the send channel onto the connection until the channel is
// closed or a write fails.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		data, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Error("WebSocket write error: %v", err)
			return
		}
	}
}
