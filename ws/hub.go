package ws

import (
	"sync"
	"time"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Content changes carry whole
	// files, so this is generous.
	maxMessageSize = 1 << 20

	sendChannelSize      = 256
	broadcastChannelSize = 1000
)

// relayMessage is a broadcast that skips the originating connection. Used
// for editor content updates, where the sender ignores its own echo anyway.
type relayMessage struct {
	data            []byte
	excludeSocketId string
}

// Hub fans messages out to every connection of one room. There is one hub
// per room per process; with multiple gateway processes each hub only knows
// its local connections and cross-process fan-out goes through the notifier.
type Hub struct {
	roomId string

	// Registered clients.
	clients map[*Client]struct{}

	// Broadcast messages to all clients.
	Broadcast chan []byte

	// Broadcast to all clients except one connection.
	Relay chan relayMessage

	// Unregister a client from the hub.
	Unregister chan *Client

	// mutex for manipulating the clients
	sync.RWMutex
}

func NewHub(roomId string) *Hub {
	return &Hub{
		roomId:     roomId,
		clients:    make(map[*Client]struct{}),
		Broadcast:  make(chan []byte, broadcastChannelSize),
		Relay:      make(chan relayMessage, broadcastChannelSize),
		Unregister: make(chan *Client),
	}
}

// NoClients returns the number of clients registered.
func (h *Hub) NoClients() int {
	h.RLock()
	defer h.RUnlock()
	return len(h.clients)
}

// Attach adds a client to the hub. Attachment is synchronous: once Attach
// returns, the client is visible to every subsequent fan-out, and a Detach
// that follows it cannot be overtaken by the insert.
func (h *Hub) Attach(client *Client) {
	h.Lock()
	h.clients[client] = struct{}{}
	h.Unlock()
}

// Detach removes a client from the hub without touching its connection or
// channels. Used for leave-room, where the connection itself stays open.
func (h *Hub) Detach(client *Client) {
	h.Lock()
	delete(h.clients, client)
	h.Unlock()
}

// Run is the main hub event loop handling unregister and broadcast events.
// Attach/Detach mutate the clients map directly under the lock instead of
// going through the loop, so their ordering follows the caller's.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Unregister:
			go func() {
				h.RLock()
				if _, ok := h.clients[client]; ok {
					h.RUnlock()
					h.Lock()
					delete(h.clients, client)
					if client.conn != nil {
						// probably already closed, just to make sure
						client.conn.Close()
					}
					// wait for all loops and pending write operations, then
					// it is safe to close the send channel
					client.Wait()
					close(client.Send)
					h.Unlock()
				} else {
					h.RUnlock()
				}
			}()

		case message := <-h.Broadcast:
			go h.fanOut(message, "")

		case message := <-h.Relay:
			go h.fanOut(message.data, message.excludeSocketId)
		}
	}
}

func (h *Hub) fanOut(message []byte, excludeSocketId string) {
	var wg sync.WaitGroup
	h.RLock()
	for client := range h.clients {
		if excludeSocketId != "" && client.SocketId == excludeSocketId {
			continue
		}
		wg.Add(1)
		client.Add(1)
		go func(c *Client) {
			defer wg.Done()
			defer c.Done()
			c.Send <- message
		}(client)
	}
	wg.Wait()
	h.RUnlock()
}
