package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yigit/sims/internal/app/models"
)

// IsUpgrade reports whether r asks to switch to the websocket protocol
func IsUpgrade(r *http.Request) bool {
	return websocket.IsWebSocketUpgrade(r)
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 || h.allowedOrigins["*"] {
		return true
	}
	return h.allowedOrigins[origin]
}

// Serve upgrades the request and registers the connection as a notification
// stream for recipient. On failure the upgrader has already answered the
// client.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, recipient models.Recipient) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		recipient: recipient,
		logger:    h.logger,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return ErrHubClosed
	}

	go client.writePump()
	go client.readPump()
	return nil
}
