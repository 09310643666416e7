package ws

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; rely on JWT auth.
		return true
	},
}

// EventsHandler upgrades an authenticated request to the change feed.
// ?resources=staff,services narrows the feed.
func EventsHandler(hub *EventHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		resources := map[string]struct{}{}
		for _, r := range strings.Split(c.Query("resources"), ",") {
			if r = strings.TrimSpace(r); r != "" {
				resources[r] = struct{}{}
			}
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newEventClient(hub, conn, resources)
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		client.readPump()
	}
}
