package ws

import (
	"net/http"

	"github.com/codehive/codehive/globals"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWs upgrades an incoming request and runs the connection until it
// closes. The connection is anonymous until its auth-join event; the room it
// joins decides which hub it is attached to.
func ServeWs(gw *Gateway, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		globals.AppLogger.Error("websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	c := NewClient(gw, conn)
	c.Add(2)
	go c.WriteLoop()
	go c.ReadLoop()

	<-c.doneChan
	gw.HandleDisconnect(c)
	if c.hub != nil {
		c.hub.Unregister <- c
	}
}
