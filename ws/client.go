package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/codehive/codehive/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
)

// Client is a middleman between the websocket connection and the hub. It is
// the per-connection session context: SocketId is fixed at handshake time,
// UserId and RoomId are set by a successful auth-join and discarded with the
// connection.
type Client struct {
	gw *Gateway

	// The hub of the joined room, nil until auth-join succeeds.
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	SocketId string
	UserId   string
	RoomId   string
	Username string

	doneChan chan struct{}

	// WaitGroup which keeps track of running read/write loops and write
	// access to Send. If the WaitGroup is done, it is safe to close all
	// channels (all loops are done and there are no more write operations on
	// the channels).
	sync.WaitGroup
}

func NewClient(gw *Gateway, conn *websocket.Conn) *Client {
	return &Client{
		gw:       gw,
		conn:     conn,
		Send:     make(chan []byte, sendChannelSize),
		SocketId: uuid.NewString(),
		doneChan: make(chan struct{}),
	}
}

// Joined reports whether this connection completed auth-join.
func (c *Client) Joined() bool {
	return c.hub != nil
}

// sendEvent queues one event for this connection only.
func (c *Client) sendEvent(event string, payload interface{}) {
	data, err := types.NewWebsocketMessage(event, payload)
	if err != nil {
		log.Printf("error: could not marshal %s message: %s", event, err)
		return
	}
	c.Send <- data
}

// ReadLoop pumps messages from the websocket connection to the gateway.
//
// The application runs ReadLoop in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection by
// executing all reads from this goroutine. Handlers run synchronously here,
// which is what preserves per-connection message ordering.
func (c *Client) ReadLoop() {
	defer func() {
		c.conn.Close()
		close(c.doneChan)
		c.Done()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	message := &types.WebsocketMessage{}
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("info: ws closed unexpected: %s", err)
			}
			return
		}

		err = json.Unmarshal(raw, &message)
		if err != nil {
			log.Printf("error: could not unmarshal ws message: %s", err)
			return
		}

		switch message.Event {
		case types.EventAuthJoin:
			joinMsg := types.AuthJoinMessage{}
			if !decodePayload(message.Data, &joinMsg) {
				return
			}
			if err := c.gw.HandleAuthJoin(context.Background(), c, joinMsg); err != nil {
				// handshake failures are fatal for the connection
				return
			}

		case types.EventSyncView:
			viewMsg := types.SyncViewMessage{}
			if !decodePayload(message.Data, &viewMsg) {
				return
			}
			c.gw.HandleSyncView(c, viewMsg)

		case types.EventLeaveRoom:
			c.gw.HandleLeave(c)

		case types.EventContentChange:
			contentMsg := types.ContentChangeMessage{}
			if !decodePayload(message.Data, &contentMsg) {
				return
			}
			c.gw.HandleContentChange(c, contentMsg)
		}
	}
}

// decodePayload unmarshals an event payload via an intermediate map, so
// unknown fields and mildly mistyped values from clients are tolerated.
func decodePayload(data json.RawMessage, out interface{}) bool {
	payloadMap := make(map[string]interface{})
	if err := json.Unmarshal(data, &payloadMap); err != nil {
		log.Printf("error: could not unmarshal payload: %s", err)
		return false
	}
	if err := mapstructure.WeakDecode(payloadMap, out); err != nil {
		log.Printf("error: could not decode payload: %s", err)
		return false
	}
	return true
}

// WriteLoop pumps messages from the hub to the websocket connection.
//
// A goroutine running WriteLoop is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.Done()
	}()
	for {
		select {
		case <-c.doneChan:
			return
		default:
		}
		select {
		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("info: could not send ping message, exiting write loop")
				return
			}

		case <-c.doneChan:
			return
		}
	}
}
