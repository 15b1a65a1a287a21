package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/codehive/codehive/auth"
	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/types"
)

// Gateway owns all connection-scoped room state. It is the only component
// that sets or clears a participant's socket id and online flag. Room writes
// are read-modify-persist with no optimistic guard: two connections handled
// in the same window can race and the last write wins, same as the rest of
// the system.
type Gateway struct {
	persister persistence.Persister
	auth      *auth.Authenticator
	registry  *Registry
}

func NewGateway(persister persistence.Persister, authenticator *auth.Authenticator, registry *Registry) *Gateway {
	return &Gateway{persister: persister, auth: authenticator, registry: registry}
}

// Registry exposes the hub registry, which is also the notify sink.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// HandleAuthJoin authenticates the connection and attaches it to the room.
// A non-nil error means the handshake failed and the connection must be
// closed; the client reconnects, it does not resume.
func (g *Gateway) HandleAuthJoin(ctx context.Context, c *Client, msg types.AuthJoinMessage) error {
	userId, err := g.auth.Verify(ctx, msg.Token)
	if err != nil {
		c.sendEvent(types.EventAuthError, types.ErrorMessage{Message: "Invalid token"})
		return err
	}
	if msg.RoomId == "" {
		c.sendEvent(types.EventJoinError, types.ErrorMessage{Message: "Missing roomId"})
		return errors.New("missing roomId")
	}

	// load the user record and the room concurrently
	room := &types.Room{Id: msg.RoomId}
	user := &types.User{Id: userId}
	var roomErr, userErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		roomErr = g.persister.GetRoom(room)
	}()
	go func() {
		defer wg.Done()
		userErr = g.persister.GetUser(user)
	}()
	wg.Wait()

	if roomErr != nil {
		if errors.Is(roomErr, persistence.ErrNotFound) {
			c.sendEvent(types.EventJoinError, types.ErrorMessage{Message: "Room not found"})
		} else {
			c.sendEvent(types.EventJoinError, types.ErrorMessage{Message: "Server error during join"})
		}
		return fmt.Errorf("room lookup: %w", roomErr)
	}
	if userErr != nil {
		if errors.Is(userErr, persistence.ErrNotFound) {
			c.sendEvent(types.EventJoinError, types.ErrorMessage{Message: "User not found"})
		} else {
			c.sendEvent(types.EventJoinError, types.ErrorMessage{Message: "Server error during join"})
		}
		return fmt.Errorf("user lookup: %w", userErr)
	}

	username := user.DisplayName()

	// Ensure a single active connection per user: any entry for this user
	// holding a different connection id is demoted before the new connection
	// is recorded.
	for i := range room.Participants {
		p := &room.Participants[i]
		if p.UserId == userId && p.SocketId != "" && p.SocketId != c.SocketId {
			p.SocketId = ""
			p.Online = false
		}
	}

	now := time.Now()
	if p := room.Find(userId); p != nil {
		p.SocketId = c.SocketId
		p.Online = true
		p.LastActive = now
		p.Username = username
	} else {
		room.Participants = append(room.Participants, types.Participant{
			UserId:     userId,
			Username:   username,
			SocketId:   c.SocketId,
			Online:     true,
			LastActive: now,
		})
	}

	if room.CurrentView == "" {
		room.CurrentView = types.ViewWelcome
	}
	room.UpdatedAt = now

	if err := g.persister.StoreRoom(*room); err != nil {
		c.sendEvent(types.EventJoinError, types.ErrorMessage{Message: "Server error during join"})
		return fmt.Errorf("store room: %w", err)
	}

	user.LastOnline = now
	if err := g.persister.StoreUser(*user); err != nil {
		globals.AppLogger.Error("could not update user last online", "user", userId, "error", err)
	}

	c.UserId = userId
	c.RoomId = room.Id
	c.Username = username

	hub := g.registry.GetOrCreate(room.Id)
	c.hub = hub
	hub.Attach(c)

	c.sendEvent(types.EventJoinSuccess, types.JoinSuccessMessage{
		RoomId:     room.Id,
		HostUserId: room.HostUserId,
	})

	g.broadcastParticipants(room.Id)

	// late-joiner catch-up: the current view goes to the caller only
	c.sendEvent(types.EventViewSynced, types.ViewSyncedMessage{
		RoomId: room.Id,
		Page:   room.CurrentView,
	})

	globals.AppLogger.Info("user joined room", "user", username, "user_id", userId, "room", room.Id)
	return nil
}

// HandleSyncView moves the room to a view. Only the host may do this;
// anything else is silently ignored, no state change and no broadcast.
func (g *Gateway) HandleSyncView(c *Client, msg types.SyncViewMessage) {
	if c.UserId == "" || msg.RoomId == "" || msg.Page == "" {
		return
	}
	room := &types.Room{Id: msg.RoomId}
	if err := g.persister.GetRoom(room); err != nil {
		return
	}
	if room.HostUserId != c.UserId {
		return
	}

	room.CurrentView = msg.Page
	room.UpdatedAt = time.Now()
	if err := g.persister.StoreRoom(*room); err != nil {
		globals.AppLogger.Error("could not persist view change", "room", msg.RoomId, "error", err)
		return
	}

	data, err := types.NewWebsocketMessage(types.EventViewSynced, types.ViewSyncedMessage{
		RoomId: room.Id,
		Page:   msg.Page,
	})
	if err != nil {
		return
	}
	// including the host, as idempotent confirmation
	if hub := g.registry.Peek(room.Id); hub != nil {
		hub.Broadcast <- data
	}
	globals.AppLogger.Debug("view synced", "room", room.Id, "page", msg.Page)
}

// HandleLeave is the explicit leave-room event. The participant record is
// cleared and the connection stops receiving room broadcasts, but the
// websocket itself stays open.
func (g *Gateway) HandleLeave(c *Client) {
	g.clearParticipant(c)
	if c.hub != nil {
		c.hub.Detach(c)
		c.hub = nil
		c.RoomId = ""
	}
}

// HandleDisconnect runs when the connection goes away for any reason.
func (g *Gateway) HandleDisconnect(c *Client) {
	g.clearParticipant(c)
}

// clearParticipant marks the connection's participant offline. The entry is
// matched on user id AND this connection's socket id, so a disconnect never
// clears a newer connection that already replaced it; a miss is a silent
// no-op.
func (g *Gateway) clearParticipant(c *Client) {
	if c.UserId == "" || c.RoomId == "" {
		return
	}
	room := &types.Room{Id: c.RoomId}
	if err := g.persister.GetRoom(room); err != nil {
		return
	}

	var found bool
	for i := range room.Participants {
		p := &room.Participants[i]
		if p.UserId == c.UserId && p.SocketId == c.SocketId {
			p.SocketId = ""
			p.Online = false
			p.LastActive = time.Now()
			found = true
			break
		}
	}
	if !found {
		return
	}

	room.UpdatedAt = time.Now()
	if err := g.persister.StoreRoom(*room); err != nil {
		globals.AppLogger.Error("could not persist leave", "room", c.RoomId, "error", err)
		return
	}
	g.broadcastParticipants(room.Id)
}

// HandleContentChange relays one live edit to every other connection in the
// room. Nothing is persisted and nothing is merged: recipients hold whatever
// update they processed last, convergence comes from the explicit save plus
// the authoritative file reads.
func (g *Gateway) HandleContentChange(c *Client, msg types.ContentChangeMessage) {
	if !c.Joined() || msg.RoomId == "" || msg.FilePath == "" {
		return
	}
	data, err := types.NewWebsocketMessage(types.EventContentUpdate, types.ContentUpdateMessage{
		FilePath: msg.FilePath,
		Content:  msg.Content,
		From:     c.SocketId,
	})
	if err != nil {
		return
	}
	c.hub.Relay <- relayMessage{data: data, excludeSocketId: c.SocketId}
}

// broadcastParticipants re-reads the room and pushes the projected
// participant list to every connection in the room, the caller included.
func (g *Gateway) broadcastParticipants(roomId string) {
	room := &types.Room{Id: roomId}
	if err := g.persister.GetRoom(room); err != nil {
		return
	}
	hub := g.registry.Peek(roomId)
	if hub == nil {
		return
	}
	data, err := types.NewWebsocketMessage(types.EventParticipants, types.ParticipantsMessage{
		RoomId:       room.Id,
		HostUserId:   room.HostUserId,
		Participants: room.PresenceView(),
	})
	if err != nil {
		return
	}
	hub.Broadcast <- data
}
