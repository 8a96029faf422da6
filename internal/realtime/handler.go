package realtime

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The chat app serves anonymous public rooms; any origin may join.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades the request and hands the connection to the hub.
func ServeWS(hub *Hub, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "websocket upgrade", "error", err)
			return
		}

		client := newClient(hub, conn, logger)
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
