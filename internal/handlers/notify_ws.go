package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cipherpoint/cipherpoint-backend/internal/middleware"
)

var notifyUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced at the HTTP CORS layer.
		return true
	},
}

// NotifySocket handles GET /ws/notify. The connection receives
// message_received events for the authenticated user until it closes.
// Auth runs in RequireAuth; browser clients pass the token as ?token=.
func NotifySocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	conn, err := notifyUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	notifyHub.Register(userID, conn)
	defer notifyHub.Unregister(userID, conn)

	// Drain client frames so pings are answered; any read error ends the
	// connection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
