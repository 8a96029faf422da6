package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 16
)

// Client is one websocket connection. The hub talks to it only through
// the send channel; the two pump goroutines own the connection.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan Envelope
	remoteAddr string
	logger     *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan Envelope, sendBufferSize),
		remoteAddr: conn.RemoteAddr().String(),
		logger:     logger.With("component", "client", "remote_addr", conn.RemoteAddr().String()),
	}
}

// readPump decodes inbound envelopes and hands them to the hub until
// the connection dies. It is the goroutine that triggers unregister.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read", "error", err)
			}
			return
		}
		c.handle(env)
	}
}

// handle relabels a client event as its broadcast counterpart. Unknown
// events and undecodable payloads are dropped; a bad message is that
// one client's problem, not the room's.
func (c *Client) handle(env Envelope) {
	switch env.Event {
	case EventCreateMessage:
		var p createMessagePayload
		if err := decode(env.Data, &p); err != nil {
			c.logger.Warn("bad createMessage payload", "error", err)
			return
		}
		out, err := newEnvelope(EventNewMessage, domain.Message{
			ID:        uuid.NewString(),
			From:      p.From,
			Text:      p.Text,
			CreatedAt: c.hub.now(),
		})
		if err != nil {
			c.logger.Error("encode newMessage", "error", err)
			return
		}
		c.hub.broadcast <- outbound{sender: c, env: out}

	case EventCreateLocationMessage:
		var p createLocationPayload
		if err := decode(env.Data, &p); err != nil {
			c.logger.Warn("bad createLocationMessage payload", "error", err)
			return
		}
		out, err := newEnvelope(EventNewLocationMessage, domain.LocationMessage{
			ID:        uuid.NewString(),
			From:      p.From,
			URL:       domain.MapsURL(p.Latitude, p.Longitude),
			CreatedAt: c.hub.now(),
		})
		if err != nil {
			c.logger.Error("encode newLocationMessage", "error", err)
			return
		}
		c.hub.broadcast <- outbound{sender: c, env: out}

	default:
		c.logger.Warn("unknown event", "event", env.Event)
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub dropped us.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
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

func decode(raw []byte, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(raw, v)
}
