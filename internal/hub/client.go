package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is one websocket connection known to the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
}

// NewClient wraps an upgraded connection. The id is the connection id used
// across the protocol (senderId, socketId, target ids).
func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   id,
		send: make(chan []byte, 256),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// CloseConn closes the underlying websocket connection.
func (c *Client) CloseConn() { c.conn.Close() }

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// enqueue puts a frame on the client's send queue without blocking; a slow
// client drops frames rather than stalling a broadcast.
func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		logrus.WithField("conn_id", c.id).Warn("Client send channel full, dropping frame")
	}
}

// ReadPump pumps frames from the websocket to the hub's channel. Exactly
// one per connection; exiting triggers unregistration.
func (c *Client) ReadPump() {
	defer func() {
		if !c.hub.QueueMessage(HubMessage{Type: "unregister", Client: c}) {
			// Queue saturated or hub closed. Unregister directly so the
			// connection never leaks from the client and group maps.
			logrus.WithField("conn_id", c.id).Warn("Hub queue unavailable, unregistering directly")
			c.hub.unregisterClient(c)
		}
		c.conn.Close()
		logrus.WithField("conn_id", c.id).Debug("Read pump exited")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("conn_id", c.id).WithError(err).Warn("Websocket read error")
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if !c.hub.QueueMessage(HubMessage{Type: "event", Client: c, RawData: message}) {
			logrus.WithField("conn_id", c.id).Warn("Hub queue full, dropping client frame")
		}
	}
}

// WritePump pumps frames from the send queue to the websocket and keeps
// the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logrus.WithField("conn_id", c.id).Debug("Write pump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel during unregistration.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("conn_id", c.id).WithError(err).Warn("Failed to write frame")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
