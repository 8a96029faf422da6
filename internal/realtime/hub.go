package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aidarbek/todochat/internal/domain"
	"github.com/aidarbek/todochat/internal/metrics"
	"github.com/google/uuid"
)

// outbound is one event headed for the hub's clients. sender is
// excluded from delivery; a nil sender reaches everyone.
type outbound struct {
	sender *Client
	env    Envelope
}

// Hub owns the set of connected clients and serializes all membership
// changes and broadcasts through its channels, so no client map locking
// is needed. Messages are broadcast-and-forget: no history, no rooms,
// no replay for late joiners.
type Hub struct {
	logger *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	clients map[*Client]struct{}

	// now is swappable so tests can pin message timestamps.
	now func() time.Time
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger.With("component", "hub"),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		clients:    make(map[*Client]struct{}),
		now:        time.Now,
	}
}

// Run processes membership and broadcast events until ctx is done.
// Broadcast order across clients follows arrival order at the hub.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("hub started")

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Info("hub shut down")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			metrics.ChatClientsConnected.Set(float64(len(h.clients)))
			h.logger.Info("client connected", "remote_addr", c.remoteAddr, "clients", len(h.clients))
			h.greet(c)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				metrics.ChatClientsConnected.Set(float64(len(h.clients)))
				h.logger.Info("client disconnected", "remote_addr", c.remoteAddr, "clients", len(h.clients))
			}

		case out := <-h.broadcast:
			h.deliver(out)
		}
	}
}

// greet welcomes the new socket and tells everyone else about it,
// both as Admin messages.
func (h *Hub) greet(c *Client) {
	welcome, err := newEnvelope(EventNewMessage, h.adminMessage("Welcome to the chat app"))
	if err != nil {
		h.logger.Error("encode welcome", "error", err)
		return
	}
	h.send(c, welcome)

	joined, err := newEnvelope(EventNewMessage, h.adminMessage("New user joined"))
	if err != nil {
		h.logger.Error("encode join notice", "error", err)
		return
	}
	h.deliver(outbound{sender: c, env: joined})
}

func (h *Hub) adminMessage(text string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		From:      domain.AdminSender,
		Text:      text,
		CreatedAt: h.now(),
	}
}

func (h *Hub) deliver(out outbound) {
	metrics.ChatBroadcastsTotal.WithLabelValues(out.env.Event).Inc()
	for c := range h.clients {
		if c == out.sender {
			continue
		}
		h.send(c, out.env)
	}
}

// send enqueues without blocking. A client that can't keep up with its
// buffer is dropped rather than stalling the hub loop.
func (h *Hub) send(c *Client, env Envelope) {
	select {
	case c.send <- env:
	default:
		metrics.ChatClientsDroppedTotal.Inc()
		h.logger.Warn("client send buffer full, dropping", "remote_addr", c.remoteAddr)
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}
